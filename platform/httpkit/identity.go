package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the authenticated caller extracted by AuthRequired.
type Identity struct {
	UserID uuid.UUID
	OrgID  *uuid.UUID
	Roles  []string
}

// GetIdentity reads the authenticated identity from the gin context.
func GetIdentity(c *gin.Context) (Identity, bool) {
	rawUser, ok := c.Get(ContextUserIDKey)
	if !ok {
		return Identity{}, false
	}
	userID, ok := rawUser.(uuid.UUID)
	if !ok {
		return Identity{}, false
	}

	identity := Identity{UserID: userID}

	if rawRoles, ok := c.Get(ContextRolesKey); ok {
		if roles, ok := rawRoles.([]string); ok {
			identity.Roles = roles
		}
	}

	if rawOrg, ok := c.Get(ContextOrgIDKey); ok {
		if orgID, ok := rawOrg.(uuid.UUID); ok {
			identity.OrgID = &orgID
		}
	}

	return identity, true
}

// MustGetIdentity reads the identity or aborts with 401. Returns nil when the
// request was aborted.
func MustGetIdentity(c *gin.Context) *Identity {
	identity, ok := GetIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return &identity
}

// MustGetOrgID reads the caller's organization or aborts with 403.
func MustGetOrgID(c *gin.Context, identity *Identity) (uuid.UUID, bool) {
	if identity == nil || identity.OrgID == nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "organization membership required"})
		return uuid.Nil, false
	}
	return *identity.OrgID, true
}
