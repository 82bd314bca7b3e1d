package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"equipment-console/internal/ports"
)

// RequestLogger logs one line per gateway request. Handler errors and 5xx
// responses are logged at error level.
func RequestLogger(logger ports.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			ctx := c.Request().Context()
			args := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"route_pattern", c.Path(),
				"status", c.Response().Status,
				"duration", time.Since(started).String(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if err != nil || c.Response().Status >= 500 {
				if err != nil {
					args = append(args, "error", err.Error())
				}
				logger.Error(ctx, "http request failed", args...)
				return nil
			}
			logger.Info(ctx, "http request", args...)
			return nil
		}
	}
}
