package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/workshop/backend/internal/interfaces/http/dto"
)

// OrgIDKey is the gin context key holding the resolved org scope
const OrgIDKey = "org_id"

// OrgHeader is the request header carrying the org identifier
const OrgHeader = "X-Org-ID"

// OrgConfig controls how the org scope is resolved for a request
type OrgConfig struct {
	Header string
	// DefaultOrgID is applied when the header is absent. uuid.Nil makes
	// the header mandatory.
	DefaultOrgID uuid.UUID
}

// DefaultOrgConfig returns the development configuration with a fallback
// org so local clients work without headers.
func DefaultOrgConfig() OrgConfig {
	return OrgConfig{
		Header:       OrgHeader,
		DefaultOrgID: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
	}
}

// OrgScope resolves the org scope with the default configuration
func OrgScope() gin.HandlerFunc {
	return OrgScopeWithConfig(DefaultOrgConfig())
}

// OrgScopeWithConfig returns a middleware that resolves the org scope from
// the configured header and stores it in the gin context. Requests with a
// malformed org ID are rejected before reaching handlers.
func OrgScopeWithConfig(cfg OrgConfig) gin.HandlerFunc {
	header := cfg.Header
	if header == "" {
		header = OrgHeader
	}

	return func(c *gin.Context) {
		raw := c.GetHeader(header)
		if raw == "" {
			if cfg.DefaultOrgID == uuid.Nil {
				c.AbortWithStatusJSON(http.StatusBadRequest,
					dto.NewErrorResponse(dto.ErrCodeBadRequest, "Missing "+header+" header"))
				return
			}
			c.Set(OrgIDKey, cfg.DefaultOrgID)
			c.Next()
			return
		}

		orgID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid "+header+" header"))
			return
		}

		c.Set(OrgIDKey, orgID)
		c.Next()
	}
}

// GetOrgID returns the org scope resolved by OrgScope, if any
func GetOrgID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(OrgIDKey)
	if !exists {
		return uuid.Nil, false
	}
	orgID, ok := value.(uuid.UUID)
	return orgID, ok
}
