package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gurilao-dev/loja/auth"
	"github.com/Gurilao-dev/loja/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userContextKey = "authenticatedUser"

// UserStore resolves token claims to a live user document on every
// authenticated call.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Middleware struct {
	tokens *auth.TokenService
	users  UserStore
}

func New(tokens *auth.TokenService, users UserStore) *Middleware {
	return &Middleware{
		tokens: tokens,
		users:  users,
	}
}

// RequireAuth validates the bearer token, loads the user and rejects
// disabled accounts. The resolved user lands on the request context.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "Token de acesso requerido")
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			abort(c, http.StatusForbidden, "Token inválido")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			abort(c, http.StatusForbidden, "Token inválido")
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Usuário não encontrado")
			return
		}
		if !user.IsActive {
			abort(c, http.StatusUnauthorized, "Conta desativada")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes; it must run after RequireAuth.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			abort(c, http.StatusForbidden, "Acesso negado. Apenas administradores.")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by RequireAuth, nil outside of it.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		// The websocket endpoint cannot set headers from the browser.
		return c.Query("token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
