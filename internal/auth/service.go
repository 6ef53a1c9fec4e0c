package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/easygrow/plantcore/internal/config"
	"github.com/easygrow/plantcore/internal/storage"
	"github.com/easygrow/plantcore/internal/types"
	"go.uber.org/zap"
)

// Store is the slice of the storage layer the account service needs.
type Store interface {
	CreateUser(ctx context.Context, fullName string, phone *string, email, username, passwordHash string) (*storage.User, error)
	GetUserByUsername(ctx context.Context, username string) (*storage.User, error)
	GetUserByID(ctx context.Context, userID int64) (*storage.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]*storage.User, error)
	CountUsers(ctx context.Context) (int64, error)
	ListDevicesByUser(ctx context.Context, userID int64) ([]*storage.Device, error)
}

// Mailer delivers the credentials message after registration. A failed
// delivery must never undo the committed registration.
type Mailer interface {
	Send(to, subject, body string) error
}

type Service struct {
	store          Store
	jwtHandler     *JWTHandler
	passwordHasher *PasswordHasher
	mailer         Mailer
	logger         *zap.Logger
}

func NewService(store Store, cfg config.AuthConfig, mailer Mailer, logger *zap.Logger) *Service {
	return &Service{
		store:          store,
		jwtHandler:     NewJWTHandler(cfg.GetJWTSecret(), cfg.AccessTokenTTL),
		passwordHasher: NewPasswordHasher(),
		mailer:         mailer,
		logger:         logger,
	}
}

func (s *Service) JWTHandler() *JWTHandler {
	return s.jwtHandler
}

type RegisterRequest struct {
	FullName string `json:"nombre_completo" binding:"required"`
	Phone    string `json:"telefono"`
	Email    string `json:"correo" binding:"required,email"`
	Username string `json:"usuario" binding:"required"`
	Password string `json:"contrasena" binding:"required,min=8"`
}

type RegisterResult struct {
	User         *storage.User `json:"usuario"`
	EmailSent    bool          `json:"email_enviado"`
	EmailWarning string        `json:"email_warning,omitempty"`
}

// UserProfile is a user together with the devices bound to the account.
type UserProfile struct {
	*storage.User
	Devices []*storage.Device `json:"dispositivos"`
}

type UserList struct {
	Users []*UserProfile `json:"usuarios"`
	Total int64          `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // seconds
	Profile     *UserProfile `json:"usuario"`
}

// Register creates an account and mails the credentials. Duplicate username
// or email surfaces as Conflict from the storage layer; a mail failure is
// reported as a warning on the result, never as a rollback.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	fullName := strings.TrimSpace(req.FullName)
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if fullName == "" || username == "" || email == "" {
		return nil, types.InvalidInput("full name, username and email must not be empty")
	}

	passwordHash, err := s.passwordHasher.HashPassword(req.Password)
	if err != nil {
		return nil, types.Internal("failed to hash password", err)
	}

	var phone *string
	if p := strings.TrimSpace(req.Phone); p != "" {
		phone = &p
	}

	user, err := s.store.CreateUser(ctx, fullName, phone, email, username, passwordHash)
	if err != nil {
		return nil, err
	}

	result := &RegisterResult{User: user, EmailSent: true}
	if err := s.mailer.Send(email, "Your EasyGrow access credentials", credentialsBody(fullName, username)); err != nil {
		// User creation is already committed; surface the failure as a
		// warning instead.
		s.logger.Warn("Failed to send credentials email",
			zap.String("email", email),
			zap.Error(err))
		result.EmailSent = false
		result.EmailWarning = "account created but the credentials email could not be delivered"
	}

	return result, nil
}

func credentialsBody(fullName, username string) string {
	return fmt.Sprintf(`Hello %s,

Welcome to EasyGrow. Your account is ready:

Username: %s

Sign in with the password you chose during registration.

The EasyGrow team`, fullName, username)
}

// Login verifies the credentials and issues an access token. Unknown
// username and wrong password are indistinguishable for the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if types.KindOf(err) == types.KindNotFound {
			return nil, types.Unauthorized("invalid credentials")
		}
		return nil, err
	}

	valid, err := s.passwordHasher.VerifyPassword(password, user.PasswordHash)
	if err != nil || !valid {
		return nil, types.Unauthorized("invalid credentials")
	}

	token, err := s.jwtHandler.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, types.Internal("failed to generate access token", err)
	}

	profile, err := s.profileFor(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtHandler.AccessTokenTTL().Seconds()),
		Profile:     profile,
	}, nil
}

func (s *Service) profileFor(ctx context.Context, user *storage.User) (*UserProfile, error) {
	devices, err := s.store.ListDevicesByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &UserProfile{User: user, Devices: devices}, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*UserProfile, error) {
	if userID <= 0 {
		return nil, types.InvalidInput("user id must be positive")
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profileFor(ctx, user)
}

// GetUserByUsername resolves a profile by its unique username. The
// password hash never reaches the wire; the model's json tag hides it.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, types.InvalidInput("username must not be empty")
	}
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.profileFor(ctx, user)
}

// ListUsers pages through all accounts with their devices.
func (s *Service) ListUsers(ctx context.Context, skip, limit int) (*UserList, error) {
	if skip < 0 {
		return nil, types.InvalidInput("skip must be zero or greater")
	}
	if limit <= 0 || limit > 100 {
		return nil, types.InvalidInput("limit must be between 1 and 100")
	}

	users, err := s.store.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]*UserProfile, 0, len(users))
	for _, user := range users {
		profile, err := s.profileFor(ctx, user)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	return &UserList{Users: profiles, Total: total, Skip: skip, Limit: limit}, nil
}
