package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type Mode string

const (
	ModeNone   Mode = "none"
	ModeAPIKey Mode = "api_key"

	HeaderAPIKey = "X-API-Key"
)

var ErrInvalidAuthMode = errors.New("invalid auth mode")

func ParseAuthMode(value string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return ModeNone, nil
	case ModeNone, ModeAPIKey:
		return mode, nil
	default:
		return "", ErrInvalidAuthMode
	}
}

// AuthMiddleware guards the console gateway. In api_key mode every request
// must carry the configured key in X-API-Key.
func AuthMiddleware(mode Mode, apiKey string) (echo.MiddlewareFunc, error) {
	switch mode {
	case ModeNone:
	case ModeAPIKey:
		if apiKey == "" {
			return nil, errors.New("an api key is required when AUTH_MODE=api_key")
		}
	default:
		return nil, ErrInvalidAuthMode
	}
	expected := []byte(apiKey)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if mode == ModeNone {
				return next(c)
			}
			got := []byte(c.Request().Header.Get(HeaderAPIKey))
			if len(got) == 0 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			}
			return next(c)
		}
	}, nil
}
