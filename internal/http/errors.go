// Package httpapi exposes the vending machine over HTTP.
package httpapi

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError aborts the request with a JSON error payload.
func WriteJSONError(c *gin.Context, status int, message, details string) {
	c.AbortWithStatusJSON(status, jsonError{Error: message, Details: details})
}

// decodeJSON requires a JSON content type. Unknown fields are rejected by the
// binding switch set in NewRouter.
func decodeJSON(c *gin.Context, v any) error {
	if c.ContentType() != binding.MIMEJSON {
		return errUnsupportedMediaType
	}
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}
