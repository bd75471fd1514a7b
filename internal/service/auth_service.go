package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
	"github.com/noah-isme/kasku-go-api/internal/token"
)

var (
	// ErrInvalidCredentials is returned for any login failure so that the
	// response never reveals whether the username exists.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountDisabled indicates the account exists but was deactivated.
	ErrAccountDisabled = errors.New("account deactivated")
	// ErrUsernameTaken indicates a username collision on registration.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfDeletion indicates an attempt to delete one's own account.
	ErrSelfDeletion = errors.New("cannot delete your own account")
	// ErrWrongPassword indicates the current password check failed.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrSamePassword indicates the new password matches the current one.
	ErrSamePassword = errors.New("new password must differ from the current password")
	// ErrBootstrapDone indicates the system already has at least one user.
	ErrBootstrapDone = errors.New("system already initialized")
)

// ClientMeta carries request-level details used for sessions and auditing.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// AuthService implements login, logout, password rotation, first-run
// bootstrap and dashboard user administration.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest, meta ClientMeta) (dto.LoginResponse, error)
	Logout(ctx context.Context, userID uint, token string, meta ClientMeta) error
	ChangePassword(ctx context.Context, userID uint, sessionID uint, req dto.ChangePasswordRequest) error
	Bootstrap(ctx context.Context, req dto.BootstrapRequest, meta ClientMeta) (dto.LoginResponse, error)
	BootstrapAvailable(ctx context.Context) (bool, error)
	Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	GetUser(ctx context.Context, id uint) (dto.UserResponse, error)
	UpdateUser(ctx context.Context, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error)
	DeleteUser(ctx context.Context, actorID uint, id uint) error
}

type authService struct {
	users    repository.UserRepository
	sessions SessionService
	issuer   *token.Issuer
	audit    AuditRecorder
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(
	users repository.UserRepository,
	sessions SessionService,
	issuer *token.Issuer,
	audit AuditRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		audit:    audit,
		validate: validate,
		logger:   logger.With().Str("component", "auth_service").Logger(),
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, meta ClientMeta) (dto.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	username := strings.TrimSpace(req.Username)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordLogin(ctx, 0, username, meta, false, ErrInvalidCredentials.Error())
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if !user.Active {
		s.recordLogin(ctx, user.ID, username, meta, false, ErrAccountDisabled.Error())
		return dto.LoginResponse{}, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.recordLogin(ctx, user.ID, username, meta, false, ErrInvalidCredentials.Error())
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	signed, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to issue token")
		return dto.LoginResponse{}, err
	}

	if _, err := s.sessions.Open(ctx, user.ID, signed, expiresAt, meta.UserAgent, meta.IPAddress); err != nil {
		return dto.LoginResponse{}, err
	}

	loginAt := s.now()
	user.LastLogin = &loginAt
	if err := s.users.Update(ctx, &user); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to stamp last login")
	}

	s.recordLogin(ctx, user.ID, username, meta, true, "")

	return dto.LoginResponse{
		Token:              signed,
		User:               dto.NewUserResponse(user),
		MustChangePassword: user.MustChangePassword,
	}, nil
}

func (s *authService) Logout(ctx context.Context, userID uint, tokenString string, meta ClientMeta) error {
	if err := s.sessions.RevokeByToken(ctx, tokenString); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, AuditEntry{
		UserID:    userID,
		Action:    models.AuditActionLogout,
		Resource:  "auth",
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Success:   true,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to audit logout")
	}

	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, sessionID uint, req dto.ChangePasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	if req.CurrentPassword == req.NewPassword {
		return ErrSamePassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashed)
	user.MustChangePassword = false
	if err := s.users.Update(ctx, &user); err != nil {
		return err
	}

	// A password change invalidates every other login.
	if err := s.sessions.RevokeOthers(ctx, userID, sessionID); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to revoke other sessions")
	}

	return nil
}

func (s *authService) Bootstrap(ctx context.Context, req dto.BootstrapRequest, meta ClientMeta) (dto.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if count > 0 {
		return dto.LoginResponse{}, ErrBootstrapDone
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	user := models.User{
		Username:           strings.TrimSpace(req.Username),
		Email:              strings.TrimSpace(req.Email),
		Password:           string(hashed),
		FullName:           strings.TrimSpace(req.FullName),
		Role:               models.RoleAdmin,
		Active:             true,
		MustChangePassword: false,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.LoginResponse{}, err
	}

	signed, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if _, err := s.sessions.Open(ctx, user.ID, signed, expiresAt, meta.UserAgent, meta.IPAddress); err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Str("username", user.Username).Msg("initial administrator created")

	return dto.LoginResponse{
		Token:              signed,
		User:               dto.NewUserResponse(user),
		MustChangePassword: false,
	}, nil
}

func (s *authService) BootstrapAvailable(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	username := strings.TrimSpace(req.Username)
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return dto.UserResponse{}, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	role := models.UserRole(strings.TrimSpace(req.Role))
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return dto.UserResponse{}, errors.New("invalid role")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Username:           username,
		Email:              strings.TrimSpace(req.Email),
		Password:           string(hashed),
		FullName:           strings.TrimSpace(req.FullName),
		Role:               role,
		StudentID:          req.StudentID,
		Active:             true,
		MustChangePassword: true,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *authService) GetUser(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) UpdateUser(ctx context.Context, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		role := models.UserRole(strings.TrimSpace(*req.Role))
		if !role.Valid() {
			return dto.UserResponse{}, errors.New("invalid role")
		}
		user.Role = role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.StudentID != nil {
		user.StudentID = req.StudentID
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) DeleteUser(ctx context.Context, actorID uint, id uint) error {
	if actorID == id {
		return ErrSelfDeletion
	}

	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.users.Delete(ctx, id)
}

// recordLogin audits login attempts, failed ones included. Audit failures
// are logged and never surface to the caller.
func (s *authService) recordLogin(ctx context.Context, userID uint, username string, meta ClientMeta, success bool, failure string) {
	entry := AuditEntry{
		UserID:       userID,
		Action:       models.AuditActionLogin,
		Resource:     "auth",
		Context:      map[string]interface{}{"username": username},
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		Success:      success,
		ErrorMessage: failure,
	}

	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("failed to audit login attempt")
	}
}
