package rest

import (
	"github.com/labstack/echo/v4"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/present/rest/middleware"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/usecase"
)

type Handler struct {
	identity *usecase.IdentityUsecase
	listing  *usecase.ListingUsecase
	auth     *middleware.AuthMiddleware
}

func NewHandler(
	identity *usecase.IdentityUsecase,
	listing *usecase.ListingUsecase,
	auth *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		identity: identity,
		listing:  listing,
		auth:     auth,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	authed := []echo.MiddlewareFunc{h.auth.Authenticate}
	applicantOnly := []echo.MiddlewareFunc{h.auth.Authenticate, h.auth.RestrictTo(domain.RoleApplicant)}
	ownerOnly := []echo.MiddlewareFunc{h.auth.Authenticate, h.auth.RestrictTo(domain.RoleOwner)}
	adminOnly := []echo.MiddlewareFunc{h.auth.Authenticate, h.auth.RestrictTo(domain.RoleAdministrator)}

	api := e.Group("/api")

	api.POST("/applicants/signup", h.signup(domain.RoleApplicant))
	api.POST("/owners/signup", h.signup(domain.RoleOwner))
	api.POST("/applicants/login", h.login(domain.RoleApplicant))
	api.POST("/owners/login", h.login(domain.RoleOwner))
	api.POST("/admin/login", h.login(domain.RoleAdministrator))

	api.GET("/me", h.handleMe, authed...)
	api.PATCH("/me/password", h.handleChangePassword, authed...)

	api.GET("/applicants/me/saved", h.handleSaved, applicantOnly...)
	api.POST("/applicants/me/saved/:listingId", h.handleSave, applicantOnly...)
	api.DELETE("/applicants/me/saved/:listingId", h.handleUnsave, applicantOnly...)

	api.GET("/listings", h.handleSearch)
	api.GET("/listings/:id", h.handleGetListing, authed...)
	api.POST("/listings", h.handleCreateListing, ownerOnly...)
	api.PATCH("/listings/:id", h.handleUpdateListing, ownerOnly...)
	api.DELETE("/listings/:id", h.handleDeleteListing, ownerOnly...)
	api.GET("/owners/me/listings", h.handleOwnerListings, ownerOnly...)

	api.POST("/admin/owners", h.handleCreateOwner, adminOnly...)
	api.GET("/admin/applicants", h.handleListIdentities(domain.RoleApplicant), adminOnly...)
	api.GET("/admin/applicants/:id", h.handleGetIdentity(domain.RoleApplicant), adminOnly...)
	api.DELETE("/admin/applicants/:id", h.handleDeleteIdentity(domain.RoleApplicant), adminOnly...)
	api.GET("/admin/owners", h.handleListIdentities(domain.RoleOwner), adminOnly...)
	api.GET("/admin/owners/:id", h.handleGetIdentity(domain.RoleOwner), adminOnly...)
	api.DELETE("/admin/owners/:id", h.handleDeleteIdentity(domain.RoleOwner), adminOnly...)
}

// requester is only called behind Authenticate.
func requester(c echo.Context) domain.Identity {
	identity, _ := middleware.Requester(c)
	return identity
}
