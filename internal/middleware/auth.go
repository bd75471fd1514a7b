package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
	"github.com/noah-isme/kasku-go-api/internal/token"
	"github.com/noah-isme/kasku-go-api/internal/utils"
)

// Locals keys populated by Authenticate.
const (
	LocalUser      = "user"
	LocalUserID    = "user_id"
	LocalUserRole  = "user_role"
	LocalSessionID = "session_id"
	LocalToken     = "session_token"
)

// Authenticate validates the bearer token and loads the account. The
// sanitized user is attached to the request context along with the backing
// session id when one exists.
func Authenticate(issuer *token.Issuer, users repository.UserRepository, sessions repository.SessionRepository, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		userID, err := issuer.Verify(tokenString)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				return utils.SendError(c, fiber.StatusUnauthorized, "token expired")
			}
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "user not found")
			}
			logger.Error().Err(err).Msg("failed to load user")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to verify identity")
		}
		if !user.Active {
			return utils.SendError(c, fiber.StatusForbidden, "account deactivated")
		}

		sanitized := user.Sanitized()
		c.Locals(LocalUser, sanitized)
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUserRole, string(user.Role))
		c.Locals(LocalToken, tokenString)

		// The session row only feeds the sessions surface and activity
		// tracking. Token validity alone decides access, so a second logout
		// with an already-revoked token still reaches its handler and stays
		// idempotent.
		session, err := sessions.GetByToken(c.UserContext(), tokenString)
		switch {
		case err == nil:
			c.Locals(LocalSessionID, session.ID)
			if err := sessions.TouchActivity(c.UserContext(), session.ID, time.Now()); err != nil {
				logger.Warn().Err(err).Uint("session_id", session.ID).Msg("failed to touch session activity")
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			logger.Warn().Err(err).Msg("failed to load session")
		}

		return c.Next()
	}
}

// OptionalAuthenticate attaches the user when a valid token is presented and
// silently continues as anonymous otherwise.
func OptionalAuthenticate(issuer *token.Issuer, users repository.UserRepository, sessions repository.SessionRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}

		userID, err := issuer.Verify(tokenString)
		if err != nil {
			return c.Next()
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil || !user.Active {
			return c.Next()
		}

		c.Locals(LocalUser, user.Sanitized())
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUserRole, string(user.Role))
		c.Locals(LocalToken, tokenString)

		if session, err := sessions.GetByToken(c.UserContext(), tokenString); err == nil {
			c.Locals(LocalSessionID, session.ID)
		}

		return c.Next()
	}
}

// RequireRole ensures the authenticated user holds one of the allowed roles.
func RequireRole(roles ...models.UserRole) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(string(role)))
		if normalized != "" {
			allowed[normalized] = struct{}{}
			names = append(names, normalized)
		}
	}

	required := strings.Join(names, ", ")

	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalUserRole).(string)
		if !ok || strings.TrimSpace(role) == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		normalized := strings.ToLower(strings.TrimSpace(role))
		if _, ok := allowed[normalized]; !ok {
			return utils.SendError(c, fiber.StatusForbidden,
				fmt.Sprintf("requires one of roles [%s], have %q", required, normalized))
		}
		return c.Next()
	}
}

// CurrentUser returns the sanitized user attached by Authenticate.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(LocalUser).(models.User)
	return user, ok
}

// CurrentSessionID returns the session id attached by Authenticate.
func CurrentSessionID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalSessionID).(uint)
	return id, ok
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authorization := strings.TrimSpace(c.Get("Authorization"))
	if authorization == "" {
		return "", false
	}

	const bearer = "bearer "
	if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return "", false
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	if tokenString == "" {
		return "", false
	}

	return tokenString, true
}
