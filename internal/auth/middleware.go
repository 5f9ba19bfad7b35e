package auth

import (
	"errors"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "fruitygit/internal/errors"
)

// ContextKey is where the middleware stores *Claims on the echo context.
const ContextKey = "user"

var errTokenRevoked = errors.New("token revoked")

// Middleware authenticates requests with a bearer access token. Tokens whose
// id was blacklisted at logout are refused. store may be nil.
func Middleware(jwtService *JWTService, store TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			if store != nil {
				revoked, _ := store.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
				if revoked {
					return nil, errTokenRevoked
				}
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: apperrors.ErrUnauthorized.Error(),
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

// ClaimsFromContext returns the claims set by Middleware.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKey).(*Claims)
	return claims, ok && claims != nil
}

// BearerToken extracts the token from an Authorization header, if any.
func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
