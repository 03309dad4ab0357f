package handlers

import (
	"errors"
	"net/http"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/directory"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AccountHandler serves the authenticated account endpoints gameplay
// code builds on.
type AccountHandler struct {
	db *gorm.DB
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{db: db}
}

// Me returns the authenticated user's identity and account state.
func (h *AccountHandler) Me(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	user, errFind := directory.New(h.db).ByID(c.Request.Context(), identity.UserID)
	if errFind != nil {
		if errors.Is(errFind, directory.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":    user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"verified":   user.Verified,
		"active":     user.Active,
		"created_at": user.CreatedAt,
		"last_login": user.LastLoginAt,
	})
}

// identityKey is the gin context key for the authenticated identity.
const identityKey = "authIdentity"

// IdentityFrom returns the identity set by the auth middleware.
func IdentityFrom(c *gin.Context) (security.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return security.Identity{}, false
	}
	identity, ok := value.(security.Identity)
	return identity, ok
}

// SetIdentity stores the identity on the request context.
func SetIdentity(c *gin.Context, identity security.Identity) {
	c.Set(identityKey, identity)
}
