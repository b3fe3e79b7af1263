package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/kurukatsu/internal/auth"
)

const (
	actorIDKey    = "user_id"
	actorEmailKey = "user_email"

	// browsers cannot set headers on websocket upgrades
	accessTokenParam = "access_token"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token and stores the token's
// user id as the acting user.
func Auth(parser TokenParser, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			logger.Debugw("Auth token rejected", "path", c.Request.URL.Path, "error", err)
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid bearer token")
			return
		}

		SetActor(c, claims.UserID, claims.Email)
		c.Next()
	}
}

// SetActor records the acting user on the request context.
func SetActor(c *gin.Context, userID, email string) {
	c.Set(actorIDKey, userID)
	c.Set(actorEmailKey, email)
}

// ActorID returns the authenticated user id, or "" on unauthenticated routes.
func ActorID(c *gin.Context) string {
	return c.GetString(actorIDKey)
}

// ActorEmail returns the email claim of the authenticated user.
func ActorEmail(c *gin.Context) string {
	return c.GetString(actorEmailKey)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return c.Query(accessTokenParam)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
