package api

import (
	"net/http"
	"strings"

	"bistro/internal/auth"
	"bistro/internal/authz"
	"bistro/internal/models"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "user"

// Shorthands keeping the route table readable.
var (
	isAdminOrManager        = authz.IsAdminOrManager
	isManagerOrDeliveryCrew = authz.IsManagerOrDeliveryCrew
)

const (
	groupManagers     = models.GroupManagers
	groupDeliveryCrew = models.GroupDeliveryCrew
)

// Authenticate requires a valid bearer token and loads the caller with
// their group memberships into the request context.
func (a *API) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := a.userFromToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided or are invalid"})
			c.Abort()
			return
		}
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// MaybeAuthenticate loads the caller when a token is present but lets
// anonymous requests pass through.
func (a *API) MaybeAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := a.userFromToken(c); ok {
			c.Set(contextUserKey, user)
		}
		c.Next()
	}
}

// Require gates a route group on a role predicate.
func (a *API) Require(pred func(*models.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !pred(a.currentUser(c)) {
			c.JSON(http.StatusForbidden, gin.H{"detail": "you do not have permission to perform this action"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *API) userFromToken(c *gin.Context) (*models.User, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(header, "Bearer"), "Token"))

	claims, err := auth.ValidateToken(a.cfg.Auth.Secret, tokenString)
	if err != nil {
		return nil, false
	}

	var user models.User
	if err := a.db.Preload("Groups").First(&user, claims.UserID).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func (a *API) currentUser(c *gin.Context) *models.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
