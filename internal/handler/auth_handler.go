package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/middleware"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/service"
	"github.com/noah-isme/kasku-go-api/internal/utils"
)

// AuthHandler wires authentication and user administration endpoints.
type AuthHandler struct {
	service service.AuthService
	audit   service.AuditRecorder
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, audit service.AuditRecorder, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		audit:   audit,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches public auth routes. Guards are applied by the router.
func (h *AuthHandler) Register(router fiber.Router, authenticated fiber.Handler, adminOnly fiber.Handler, limits AuthLimits) {
	router.Post("/login", limits.Login, h.login)
	router.Post("/init-admin", limits.Register, h.bootstrap)
	router.Get("/init-admin", h.bootstrapStatus)

	router.Get("/me", authenticated, h.me)
	router.Post("/logout", authenticated, h.logout)
	router.Post("/change-password", authenticated, limits.PasswordChange,
		middleware.Audited(h.audit, models.AuditActionPasswordChange, "user", h.changePassword))

	router.Post("/register", authenticated, adminOnly, limits.Register,
		middleware.Audited(h.audit, models.AuditActionUserCreate, "user", h.register))
	router.Get("/users", authenticated, adminOnly, h.listUsers)
	router.Get("/users/:id", authenticated, adminOnly, h.getUser)
	router.Patch("/users/:id", authenticated, adminOnly,
		middleware.Audited(h.audit, models.AuditActionUserUpdate, "user", h.updateUser))
	router.Delete("/users/:id", authenticated, adminOnly,
		middleware.Audited(h.audit, models.AuditActionUserDelete, "user", h.deleteUser))
}

// AuthLimits bundles the rate limiters applied to credential endpoints.
type AuthLimits struct {
	Login          fiber.Handler
	Register       fiber.Handler
	PasswordChange fiber.Handler
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Login(c.Context(), payload, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid username or password")
		case errors.Is(err, service.ErrAccountDisabled):
			return utils.SendError(c, fiber.StatusForbidden, "account deactivated")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
		}
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.Context(), userIDFromContext(c), tokenFromContext(c), clientMeta(c)); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("logout failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "logout failed")
	}

	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	return utils.SendSuccess(c, "profile retrieved", dto.NewUserResponse(user))
}

func (h *AuthHandler) changePassword(c *fiber.Ctx) error {
	var payload dto.ChangePasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	err := h.service.ChangePassword(c.Context(), userIDFromContext(c), sessionIDFromContext(c), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			return utils.SendError(c, fiber.StatusUnauthorized, "current password is incorrect")
		case errors.Is(err, service.ErrSamePassword):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("password change failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "password change failed")
		}
	}

	return utils.SendSuccess(c, "password changed", nil)
}

func (h *AuthHandler) bootstrap(c *fiber.Ctx) error {
	var payload dto.BootstrapRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Bootstrap(c.Context(), payload, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapDone):
			return utils.SendError(c, fiber.StatusBadRequest, "system already initialized")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("bootstrap failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "bootstrap failed")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "administrator created", response)
}

func (h *AuthHandler) bootstrapStatus(c *fiber.Ctx) error {
	available, err := h.service.BootstrapAvailable(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to check bootstrap state")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to check bootstrap state")
	}

	return utils.SendSuccess(c, "bootstrap state retrieved", fiber.Map{"available": available})
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.Register(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			return utils.SendError(c, fiber.StatusConflict, "username already taken")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create user")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create user")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user created", user)
}

func (h *AuthHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", fiber.Map{
		"count": len(users),
		"users": users,
	})
}

func (h *AuthHandler) getUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	user, err := h.service.GetUser(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch user")
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *AuthHandler) updateUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.UpdateUser(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update user")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update user")
		}
	}

	return utils.SendSuccess(c, "user updated", user)
}

func (h *AuthHandler) deleteUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	err = h.service.DeleteUser(c.Context(), userIDFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfDeletion):
			return utils.SendError(c, fiber.StatusBadRequest, "cannot delete your own account")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete user")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete user")
		}
	}

	return utils.SendSuccess(c, "user deleted", nil)
}
