// Package middleware provides the gin middleware chain for the HTTP layer.
// Authentication itself is an upstream concern: the auth proxy in front of
// the service injects the verified owner identity as a request header, and
// this layer only propagates it.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
)

// DefaultOwnerHeader is used when the server config leaves the header unset.
const DefaultOwnerHeader = "X-Owner-ID"

const ownerContextKey = "ownerID"

// Owner extracts the owner identity header and stores it in the gin context.
// Requests without the header are rejected; every API operation is scoped to
// an owner.
func Owner(header string) gin.HandlerFunc {
	if header == "" {
		header = DefaultOwnerHeader
	}
	return func(c *gin.Context) {
		owner := c.GetHeader(header)
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    errors.CodeUnauthorized.String(),
				"message": "missing owner identity header",
			})
			return
		}
		c.Set(ownerContextKey, common.UserID(owner))
		c.Next()
	}
}

// OwnerID returns the owner identity stored by the Owner middleware.
func OwnerID(c *gin.Context) common.UserID {
	if v, ok := c.Get(ownerContextKey); ok {
		if id, ok := v.(common.UserID); ok {
			return id
		}
	}
	return ""
}
