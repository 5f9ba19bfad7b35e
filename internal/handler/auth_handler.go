package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fruitygit/internal/auth"
	apperrors "fruitygit/internal/errors"
	"fruitygit/internal/metrics"
	"fruitygit/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest represents a logout request. The refresh token is optional;
// the caller's slot is cleared either way.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ValidateResponse describes a token that passed validation.
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} service.TokenPair
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	pair, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	metrics.RecordAuthAttempt("register", err == nil)
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusCreated, pair)
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.TokenPair
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.RecordAuthAttempt("login", err == nil)
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusOK, pair)
}

// Refresh godoc
// @Summary Rotate refresh token
// @Description Exchanges a refresh token for a new access and refresh token. The old refresh token stops working.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} service.TokenPair
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	metrics.RecordAuthAttempt("refresh", err == nil)
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusOK, pair)
}

// Logout godoc
// @Summary Logout user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LogoutRequest false "Refresh token"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return errorResponse(apperrors.ErrUnauthorized)
	}

	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := h.authService.Logout(c.Request().Context(), claims, req.RefreshToken); err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Validate godoc
// @Summary Validate an access token
// @Description Checks signature and expiry. With email set, the token must belong to that user.
// @Tags auth
// @Produce json
// @Param token query string false "Access token (defaults to the bearer header)"
// @Param email query string false "Expected owner email"
// @Success 200 {object} ValidateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/validate [get]
func (h *AuthHandler) Validate(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		token = auth.BearerToken(c)
	}
	if token == "" {
		return errorResponse(apperrors.ErrUnauthorized)
	}

	claims, err := h.authService.Validate(c.Request().Context(), token, c.QueryParam("email"))
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusOK, ValidateResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	})
}
