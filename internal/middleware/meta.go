package middleware

import (
	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

// WithResponseMeta seeds the response metadata with the storage mode the
// request is served in.
func WithResponseMeta(storageMode func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := map[string]interface{}{}
		if storageMode != nil {
			meta["storage"] = storageMode()
		}
		c.Set(responseMetaKey, meta)
		c.Next()
	}
}

// ExtractMeta returns the metadata map stored on the context, or nil.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}
