package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/CiroGamboa/bimoi/internal/auth"
)

// DefaultUserID is the owner id issued when a token request names none.
// Single-operator deployments never need to pass one.
const DefaultUserID = "default"

// AuthHandler serves /auth/token and issues JWTs against the configured API key.
type AuthHandler struct {
	apiKey    string
	jwtSecret string
	expiresIn time.Duration
	logger    *slog.Logger
}

// TokenRequest is the body for POST /auth/token.
type TokenRequest struct {
	APIKey string `json:"api_key"`
	UserID string `json:"user_id"`
}

// TokenResponse is the success body (access_token, expires_at).
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
	UserID      string `json:"user_id"`
}

// NewAuthHandler creates an auth handler with the API key and JWT config.
func NewAuthHandler(log *slog.Logger, apiKey, jwtSecret string, expiresIn time.Duration) *AuthHandler {
	return &AuthHandler{
		apiKey:    apiKey,
		jwtSecret: jwtSecret,
		expiresIn: expiresIn,
		logger:    log.With(slog.String("handler", "auth")),
	}
}

// Register mounts POST /auth/token on the Echo instance.
func (h *AuthHandler) Register(e *echo.Echo) {
	e.POST("/auth/token", h.Token)
}

// Token validates the API key and issues a JWT carrying the owner id.
func (h *AuthHandler) Token(c echo.Context) error {
	if strings.TrimSpace(h.apiKey) == "" {
		return echo.NewHTTPError(http.StatusInternalServerError, "api key not configured")
	}
	if strings.TrimSpace(h.jwtSecret) == "" {
		return echo.NewHTTPError(http.StatusInternalServerError, "jwt secret not configured")
	}
	if h.expiresIn <= 0 {
		return echo.NewHTTPError(http.StatusInternalServerError, "jwt expiry not configured")
	}

	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.apiKey)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = DefaultUserID
	}
	token, expiresAt, err := auth.GenerateToken(userID, h.jwtSecret, h.expiresIn)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		UserID:      userID,
	})
}
