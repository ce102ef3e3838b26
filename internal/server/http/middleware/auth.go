package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

const (
	// SessionContextKey is a gin context key for the verified session.
	SessionContextKey = "session"
	authCookieName    = "storefront_token"
)

// SessionVerifier turns a bearer token into a session.
type SessionVerifier interface {
	VerifySession(token string) (model.Session, error)
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(domainErrors.ErrAuthentication.Error()))
			return
		}

		session, err := verifier.VerifySession(token)
		if err != nil {
			if errors.Is(err, domainErrors.ErrAuthentication) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(domainErrors.ErrAuthentication.Error()))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Fail(domainErrors.ErrOperation.Error()))
			return
		}

		c.Set(SessionContextKey, session)
		c.Next()
	}
}

// AdminRequired rejects sessions without the admin role. It must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(domainErrors.ErrAuthentication.Error()))
			return
		}
		if !session.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(domainErrors.ErrAuthorization.Error()))
			return
		}
		c.Next()
	}
}

// CurrentSession extracts the verified session from context.
func CurrentSession(c *gin.Context) (model.Session, bool) {
	val, ok := c.Get(SessionContextKey)
	if !ok {
		return model.Session{}, false
	}
	session, ok := val.(model.Session)
	return session, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
