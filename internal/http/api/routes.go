// Package api registers the HTTP surface of the account gate. Gameplay
// endpoints hang off the same bearer middleware; only the auth routes
// are public.
package api

import (
	"net/http"
	"strings"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/auth"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/config"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/http/api/handlers"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes registers routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, svc *auth.Service, jwtCfg config.JWTConfig) {
	if r == nil || db == nil || svc == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	authHandler := handlers.NewAuthHandler(svc)
	authGroup := r.Group("/v0/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/verify", authHandler.Verify)
	authGroup.POST("/resend", authHandler.Resend)

	accountHandler := handlers.NewAccountHandler(db)
	accountGroup := r.Group("/v0/account")
	accountGroup.Use(BearerAuthMiddleware(jwtCfg))
	accountGroup.GET("/me", accountHandler.Me)
}

// BearerAuthMiddleware authenticates requests carrying a session token
// and stores the decoded identity on the context.
func BearerAuthMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	secret := []byte(jwtCfg.Secret)
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		identity, errParse := security.ParseSessionToken(token, secret)
		if errParse != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		handlers.SetIdentity(c, identity)
		c.Next()
	}
}
