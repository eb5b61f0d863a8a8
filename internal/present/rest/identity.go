package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/present/rest/presenter"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/usecase"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	domain.ApplicantProfile
	domain.OwnerProfile
}

func (r signupRequest) input(role domain.Role) usecase.SignupInput {
	in := usecase.SignupInput{
		Role:     role,
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
	}
	switch role {
	case domain.RoleApplicant:
		profile := r.ApplicantProfile
		in.Applicant = &profile
	case domain.RoleOwner:
		profile := r.OwnerProfile
		in.Owner = &profile
	}
	return in
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func sessionBody(session usecase.Session) echo.Map {
	return echo.Map{
		"token": session.Token,
		"data":  echo.Map{"identity": session.Identity.Public()},
	}
}

func (h *Handler) signup(role domain.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req signupRequest
		if err := c.Bind(&req); err != nil {
			return presenter.BadRequestMessage(c, "invalid request body")
		}
		session, err := h.identity.Signup(c.Request().Context(), req.input(role))
		if err != nil {
			return presenter.Error(c, err)
		}
		return presenter.Created(c, sessionBody(session))
	}
}

func (h *Handler) login(role domain.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return presenter.BadRequestMessage(c, "invalid request body")
		}
		session, err := h.identity.Login(c.Request().Context(), role, req.Email, req.Password)
		if err != nil {
			return presenter.Error(c, err)
		}
		return presenter.OK(c, sessionBody(session))
	}
}

func (h *Handler) handleMe(c echo.Context) error {
	return presenter.OK(c, echo.Map{"data": echo.Map{"identity": requester(c).Public()}})
}

func (h *Handler) handleChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "invalid request body")
	}
	session, err := h.identity.ChangePassword(c.Request().Context(), requester(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, sessionBody(session))
}

func (h *Handler) handleSaved(c echo.Context) error {
	docs, err := h.listing.Saved(c.Request().Context(), requester(c))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{
		"results": len(docs),
		"data":    echo.Map{"listings": docs},
	})
}

func (h *Handler) handleSave(c echo.Context) error {
	if err := h.identity.SaveListing(c.Request().Context(), requester(c), c.Param("listingId")); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"data": echo.Map{"listingId": c.Param("listingId")}})
}

func (h *Handler) handleUnsave(c echo.Context) error {
	if err := h.identity.UnsaveListing(c.Request().Context(), requester(c), c.Param("listingId")); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}
