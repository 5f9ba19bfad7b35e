package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/unrolled/secure"
)

// SecureOptions returns secure.Options for security headers.
func SecureOptions(isDevelopment bool) secure.Options {
	return secure.Options{
		IsDevelopment:         isDevelopment,
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// Secure returns a middleware that adds security headers.
func Secure(opts secure.Options) echo.MiddlewareFunc {
	return echo.WrapMiddleware(secure.New(opts).Handler)
}
