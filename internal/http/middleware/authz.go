package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/transcriptomics-backend/internal/authz"
	"github.com/yungbote/transcriptomics-backend/internal/http/response"
	"github.com/yungbote/transcriptomics-backend/internal/platform/logger"
)

type AuthzMiddleware struct {
	log        *logger.Logger
	authorizer authz.Authorizer
}

func NewAuthzMiddleware(log *logger.Logger, authorizer authz.Authorizer) *AuthzMiddleware {
	return &AuthzMiddleware{log: log.With("middleware", "AuthzMiddleware"), authorizer: authorizer}
}

func (m *AuthzMiddleware) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.authorizer.Authorize(c.Request); err != nil {
			m.log.Warn("Request denied", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorEnvelope{
				Error: response.APIError{Message: err.Error(), Code: "forbidden"},
			})
			return
		}
		c.Next()
	}
}
