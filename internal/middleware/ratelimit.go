package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	apperrors "fruitygit/internal/errors"
)

// RateLimit returns middleware that limits by client IP using an in-memory store.
// rateFormatted: "20-M", "1000-H", "50-S". Empty disables.
// clientIPHeader names a header set by a trusted proxy (the gateway sets
// X-Real-Ip) that carries the client address; empty keys on the peer address.
func RateLimit(rateFormatted, clientIPHeader string) (echo.MiddlewareFunc, error) {
	if rateFormatted == "" {
		return noop, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}
	var opts []limiter.Option
	if clientIPHeader != "" {
		opts = append(opts, limiter.WithClientIPHeader(clientIPHeader))
	}
	instance := limiter.New(memory.NewStore(), rate, opts...)
	mw := stdlib.NewMiddleware(instance, stdlib.WithLimitReachedHandler(limitReached))
	return echo.WrapMiddleware(mw.Handler), nil
}

func limitReached(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(apperrors.ErrorResponse{
		Error: "rate limit exceeded",
		Code:  "RATE_LIMITED",
	})
}

func noop(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}
