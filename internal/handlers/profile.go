package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/CiroGamboa/bimoi/internal/auth"
	"github.com/CiroGamboa/bimoi/internal/identity"
)

// ProfileHandler serves the owner's account profile.
type ProfileHandler struct {
	resolver *identity.Resolver
	logger   *slog.Logger
}

// ProfileResponse is the profile body. Empty fields are omitted.
type ProfileResponse struct {
	Name        string `json:"name"`
	Bio         string `json:"bio,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// UpdateProfileRequest is the PATCH body; absent fields stay untouched.
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	PhoneNumber *string `json:"phone_number"`
}

// NewProfileHandler creates the profile handler.
func NewProfileHandler(log *slog.Logger, resolver *identity.Resolver) *ProfileHandler {
	return &ProfileHandler{
		resolver: resolver,
		logger:   log.With(slog.String("handler", "profile")),
	}
}

// Register mounts GET and PATCH /profile on the Echo instance.
func (h *ProfileHandler) Register(e *echo.Echo) {
	e.GET("/profile", h.Get)
	e.PATCH("/profile", h.Update)
}

// Get returns the authenticated owner's profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	ownerID, err := auth.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	profile, found, err := h.resolver.GetProfile(c.Request().Context(), ownerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	return c.JSON(http.StatusOK, ProfileResponse{
		Name:        profile.Name,
		Bio:         profile.Bio,
		PhoneNumber: profile.PhoneNumber,
	})
}

// Update patches the present fields of the owner's profile.
func (h *ProfileHandler) Update(c echo.Context) error {
	ownerID, err := auth.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	profile, found, err := h.resolver.UpdateProfile(c.Request().Context(), ownerID, identity.UpdateProfileRequest{
		Name:        req.Name,
		Bio:         req.Bio,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, identity.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	return c.JSON(http.StatusOK, ProfileResponse{
		Name:        profile.Name,
		Bio:         profile.Bio,
		PhoneNumber: profile.PhoneNumber,
	})
}
