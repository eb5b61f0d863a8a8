package rest

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/present/rest/presenter"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/query"
)

func (h *Handler) handleCreateOwner(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	identity, err := h.identity.Register(c.Request().Context(), req.input(domain.RoleOwner))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, echo.Map{"data": echo.Map{"identity": identity.Public()}})
}

func (h *Handler) handleListIdentities(role domain.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		page, err := intParam(c, "page", 1)
		if err != nil {
			return presenter.Error(c, err)
		}
		limit, err := intParam(c, "limit", query.DefaultLimit)
		if err != nil {
			return presenter.Error(c, err)
		}
		limit = min(limit, query.MaxLimit)

		identities, total, err := h.identity.List(c.Request().Context(), role, page, limit)
		if err != nil {
			return presenter.Error(c, err)
		}
		out := make([]domain.PublicIdentity, 0, len(identities))
		for _, identity := range identities {
			out = append(out, identity.Public())
		}
		return presenter.OK(c, echo.Map{
			"results": len(out),
			"count":   total,
			"data":    echo.Map{"identities": out},
		})
	}
}

func (h *Handler) handleGetIdentity(role domain.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := h.identity.Get(c.Request().Context(), role, c.Param("id"))
		if err != nil {
			return presenter.Error(c, err)
		}
		return presenter.OK(c, echo.Map{"data": echo.Map{"identity": identity.Public()}})
	}
}

func (h *Handler) handleDeleteIdentity(role domain.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.identity.Delete(c.Request().Context(), role, c.Param("id")); err != nil {
			return presenter.Error(c, err)
		}
		return presenter.NoContent(c)
	}
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.NewValidationError("%s must be a positive integer", name)
	}
	return n, nil
}
