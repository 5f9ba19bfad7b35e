package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fruitygit/internal/model"
	"fruitygit/internal/service"
)

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// SearchResponse lists matching users.
type SearchResponse struct {
	Count int          `json:"count"`
	Users []model.User `json:"users"`
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	user, err := h.svc.GetUser(c.Request().Context(), p.UserID)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Search godoc
// @Summary Search users
// @Description Name or email contains the query. At least three characters, at most ten results.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param query query string true "Search text"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/search [get]
func (h *UserHandler) Search(c echo.Context) error {
	users, err := h.svc.Search(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, SearchResponse{Count: len(users), Users: users})
}
