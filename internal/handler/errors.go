package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fruitygit/internal/auth"
	apperrors "fruitygit/internal/errors"
	"fruitygit/internal/policy"
)

// errorResponse maps a service error to an echo error. The cause of a 500 is
// kept as internal error so the request logger records it without sending it.
func errorResponse(err error) error {
	mapped := apperrors.MapErrorToHTTP(err)
	httpErr := echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	if mapped.StatusCode >= http.StatusInternalServerError {
		httpErr = httpErr.SetInternal(err)
	}
	return httpErr
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: message,
		Code:  "INVALID_REQUEST",
	})
}

// principal reads the caller identity placed on the context by auth.Middleware.
func principal(c echo.Context) (policy.Principal, error) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return policy.Principal{}, errorResponse(apperrors.ErrUnauthorized)
	}
	return policy.Principal{UserID: claims.UserID, Name: claims.Name, Email: claims.Email}, nil
}
