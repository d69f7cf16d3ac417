package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"memberportal/internal/roster"
)

// ProfileLoader resolves the authenticated profile. The stored role, not
// the one baked into the token, decides capabilities so promotions and
// demotions take effect without a new login.
type ProfileLoader interface {
	GetByID(ctx context.Context, id string) (*roster.Profile, error)
}

const profileKey = "profile"

// UserAuth enforces bearer JWT tokens and the idle-session window. Each
// authenticated request counts as activity; a request after the window has
// lapsed gets 401 so the client falls back to the login page.
func UserAuth(signingKey, issuer string, sessions *SessionTracker, profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		active, err := sessions.Touch(c.Request.Context(), claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session check failed"})
			return
		}
		if !active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		profile, err := profiles.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
			return
		}

		c.Set(profileKey, *profile)
		c.Next()
	}
}

// CurrentProfile returns the profile set by UserAuth.
func CurrentProfile(c *gin.Context) (roster.Profile, bool) {
	v, ok := c.Get(profileKey)
	if !ok {
		return roster.Profile{}, false
	}
	p, ok := v.(roster.Profile)
	return p, ok
}
