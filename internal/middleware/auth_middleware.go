// auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TusharChow20/project-Chef-Lokal/internal/model"
	"github.com/TusharChow20/project-Chef-Lokal/internal/remote"
	"github.com/TusharChow20/project-Chef-Lokal/internal/session"
)

// LoginPath es a donde se manda al cliente cuando la sesión terminó.
const LoginPath = "/login"

const sessionKey = "session"

type SessionResolver interface {
	Resolve(token string) (*session.Session, error)
}

// Middleware que resuelve la sesión del token y deja la credencial del store
// en el contexto del request.
func AuthMiddleware(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header", "redirect": LoginPath})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		s, err := sessions.Resolve(token)
		if err != nil {
			msg := "invalid or expired token"
			if errors.Is(err, session.ErrSessionEnded) {
				msg = err.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "redirect": LoginPath})
			return
		}

		// Guardamos la sesión y la credencial en el contexto
		c.Set(sessionKey, s)
		c.Request = c.Request.WithContext(remote.WithCredential(c.Request.Context(), s.Credential()))
		c.Next()
	}
}

// SessionFrom devuelve la sesión que dejó AuthMiddleware.
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

// RoleRequired deja pasar solo a los roles indicados.
func RoleRequired(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no session", "redirect": LoginPath})
			return
		}
		for _, r := range roles {
			if s.Role == r {
				c.Next()
				return
			}
		}
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied, required role(s): " + strings.Join(names, ", ")})
	}
}
