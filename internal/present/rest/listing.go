package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/present/rest/presenter"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/query"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/usecase"
)

func searchBody(result usecase.SearchResult) echo.Map {
	data := result.Data
	if data == nil {
		data = []query.Document{}
	}
	return echo.Map{
		"results": result.Results,
		"count":   result.Count,
		"data":    echo.Map{"listings": data},
	}
}

func (h *Handler) handleSearch(c echo.Context) error {
	result, err := h.listing.Search(c.Request().Context(), c.QueryParams())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, searchBody(result))
}

func (h *Handler) handleOwnerListings(c echo.Context) error {
	result, err := h.listing.OwnerListings(c.Request().Context(), requester(c), c.QueryParams())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, searchBody(result))
}

func (h *Handler) handleGetListing(c echo.Context) error {
	doc, err := h.listing.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Conditional(c, echo.Map{"data": echo.Map{"listing": doc}})
}

func (h *Handler) handleCreateListing(c echo.Context) error {
	var in domain.ListingInput
	if err := c.Bind(&in); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	listing, err := h.listing.Create(c.Request().Context(), requester(c), in)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, echo.Map{"data": echo.Map{"listing": listing}})
}

func (h *Handler) handleUpdateListing(c echo.Context) error {
	var in domain.ListingInput
	if err := c.Bind(&in); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	listing, err := h.listing.Update(c.Request().Context(), requester(c), c.Param("id"), in)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"data": echo.Map{"listing": listing}})
}

func (h *Handler) handleDeleteListing(c echo.Context) error {
	if err := h.listing.Delete(c.Request().Context(), requester(c), c.Param("id")); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}
