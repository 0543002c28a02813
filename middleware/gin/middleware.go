package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reoring/guardgen"
	"github.com/reoring/guardgen/middleware"
)

// ValidateJSON checks the request JSON with v, stores the body in the request
// context, and aborts with 400 and the error payload on failure.
func ValidateJSON(v *guardgen.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := middleware.DecodeBody(c.Request.Body, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithBody(c.Request.Context(), body))
		c.Next()
	}
}

// GetBody fetches the validated body from gin.Context.
func GetBody(c *gin.Context) (any, bool) {
	return middleware.BodyFromContext(c.Request.Context())
}
