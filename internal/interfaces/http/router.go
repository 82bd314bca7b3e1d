package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Middleware struct {
	Auth          echo.MiddlewareFunc
	XRay          echo.MiddlewareFunc
	RequestLogger echo.MiddlewareFunc
}

type Handlers struct {
	Session     *SessionHandler
	Dashboard   *DashboardHandler
	Permissions *PermissionsHandler
	Documents   *DocumentsHandler
}

func newEcho(m Middleware) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	for _, mw := range []echo.MiddlewareFunc{m.XRay, m.RequestLogger, m.Auth} {
		if mw != nil {
			e.Use(mw)
		}
	}
	return e
}

func NewRouter(h Handlers, m Middleware) *echo.Echo {
	e := newEcho(m)

	e.POST("/session", h.Session.Login)
	e.POST("/session/register", h.Session.Register)
	e.DELETE("/session", h.Session.Logout)
	e.GET("/session", h.Session.Status)

	e.GET("/dashboard", h.Dashboard.Get)

	e.GET("/permissions/catalog", h.Permissions.Catalog)
	e.GET("/users/permissions", h.Permissions.Users)
	e.PUT("/users/:id/permissions", h.Permissions.Update)

	e.GET("/documents/:id/download", h.Documents.Download)
	e.GET("/documents/:id/validity", h.Documents.Validity)
	return e
}
