package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/reoring/guardgen"
	"github.com/reoring/guardgen/middleware"
)

// ValidateJSON checks the request JSON with v, stores the body in the request
// context on success, or returns 400 with the error payload.
func ValidateJSON(v *guardgen.Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := middleware.DecodeBody(c.Request().Body, v)
			if err != nil {
				return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(err))
			}
			ctx := middleware.ContextWithBody(c.Request().Context(), body)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetBody fetches the validated body from echo.Context.
func GetBody(c echo.Context) (any, bool) {
	return middleware.BodyFromContext(c.Request().Context())
}
