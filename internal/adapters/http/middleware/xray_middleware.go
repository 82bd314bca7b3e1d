package middleware

import (
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

// XRayMiddleware opens a segment per gateway request so the outbound API
// calls made while serving it are traced as subsegments.
func XRayMiddleware(segmentName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			ctx, seg := xray.BeginSegment(c.Request().Context(), segmentName)
			defer func() { seg.Close(err) }()
			_ = seg.AddAnnotation("route", c.Path())
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				_ = seg.AddAnnotation("request_id", id)
			}
			c.SetRequest(c.Request().Clone(ctx))
			return next(c)
		}
	}
}
