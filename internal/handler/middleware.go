package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"locallibrary/internal/model"
	"locallibrary/internal/policy"
	"locallibrary/internal/repository"
)

const (
	actorContextKey = "actor"

	// sessionUserKey is where the web surface stores the authenticated
	// user's id inside the scs session.
	sessionUserKey = "authenticatedUserID"
)

// currentUser returns the authenticated actor, or nil for anonymous callers.
func currentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(actorContextKey); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}

// SessionAuth resolves the session's user id into an actor. A stale or
// unknown id just leaves the request anonymous.
func SessionAuth(session *scs.SessionManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		raw := session.GetString(ctx, sessionUserKey)
		if raw == "" {
			c.Next()
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			session.Remove(ctx, sessionUserKey)
			c.Next()
			return
		}

		user, err := users.FindByID(ctx, id)
		if err != nil {
			session.Remove(ctx, sessionUserKey)
			c.Next()
			return
		}

		c.Set(actorContextKey, user)
		c.Next()
	}
}

// TokenAuth resolves a bearer token into an actor. Requests without an
// Authorization header stay anonymous; a malformed or unknown token is an
// explicit 401 rather than a silent downgrade.
func TokenAuth(tokens repository.TokenRepository, now nowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(c, http.StatusUnauthorized,
				"INVALID_TOKEN",
				"malformed authorization header",
			)
			return
		}

		user, err := tokens.FindUser(c.Request.Context(), model.ScopeAuthentication, parts[1], now())
		if err != nil {
			writeError(c, http.StatusUnauthorized,
				"INVALID_TOKEN",
				"invalid or expired token",
			)
			return
		}

		c.Set(actorContextKey, user)
		c.Next()
	}
}

// Require gates the route behind the policy table's rule for op.
func Require(authz policy.Authorizer, op policy.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := authz.Authorize(currentUser(c), op)
		switch {
		case errors.Is(err, policy.ErrAuthenticationRequired):
			writeError(c, http.StatusUnauthorized,
				"AUTHENTICATION_REQUIRED",
				"authentication required",
			)
		case errors.Is(err, policy.ErrPermissionDenied):
			writeError(c, http.StatusForbidden,
				"PERMISSION_DENIED",
				"permission denied",
			)
		case err != nil:
			writeError(c, http.StatusInternalServerError,
				"AUTHORIZATION_FAILED",
				"authorization failed",
			)
		default:
			c.Next()
		}
	}
}

// Throttled applies the request-rate class for this route group.
// Authenticated clients are keyed by user id, anonymous ones by remote IP.
func Throttled(th policy.Throttle, class policy.Class) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.ClientIP()
		if u := currentUser(c); u != nil {
			clientID = u.ID.String()
		}

		if !th.Allow(clientID, class) {
			writeError(c, http.StatusTooManyRequests,
				"RATE_LIMITED",
				"request rate limit exceeded",
			)
			return
		}
		c.Next()
	}
}
