package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/agromart/backend/internal/domain/identity"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/auth"
	"github.com/agromart/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

// ErrEmailTaken is returned when signing up with a registered e-mail
var ErrEmailTaken = shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")

// ErrInvalidCredentials is returned for an unknown e-mail or a wrong password
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	BaseURL       string        // Public site URL used in reset links
	ResetTokenTTL time.Duration // How long a reset link stays valid
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		BaseURL:       "http://localhost:8080",
		ResetTokenTTL: time.Hour,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	sessions   *auth.SessionResolver
	mailer     mail.Mailer
	config     AuthServiceConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	sessions *auth.SessionResolver,
	mailer mail.Mailer,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if config.ResetTokenTTL <= 0 {
		config.ResetTokenTTL = DefaultAuthServiceConfig().ResetTokenTTL
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		sessions:   sessions,
		mailer:     mailer,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// Signup registers a user and signs them in
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*LoginResult, error) {
	email := identity.NormalizeEmail(input.Email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Error("Failed to look up user", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to create account", err)
	}

	user, err := identity.NewUser(input.Name, email, input.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to create account", err)
	}

	s.logger.Info("User signed up", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login authenticates a user and returns a session token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := identity.NormalizeEmail(input.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email", zap.String("ip", input.IP))
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to look up user", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to sign in", err)
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.String("ip", input.IP))
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		// Don't fail the login - just log the error
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))
	return result, nil
}

// Logout revokes the session's token
func (s *AuthService) Logout(ctx context.Context, session *identity.Session) error {
	if !session.Authenticated() {
		return nil
	}
	if err := s.sessions.Revoke(ctx, session); err != nil {
		s.logger.Error("Failed to revoke token", zap.Error(err))
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to sign out", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", session.UserID.String()))
	return nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, session *identity.Session) (*UserInfo, error) {
	if !session.Authenticated() {
		return nil, shared.ErrUnauthorized
	}
	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load user", err)
	}
	info := toUserInfo(user)
	return &info, nil
}

// ForgotPassword e-mails a reset link. An unknown address still succeeds so
// the endpoint does not reveal which e-mails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = identity.NormalizeEmail(email)
	if err := identity.ValidateEmail(email); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("Password reset requested for unknown email")
			return nil
		}
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to start password reset", err)
	}

	token, err := user.IssueResetToken(s.config.ResetTokenTTL)
	if err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to start password reset", err)
	}

	link := s.resetLink(token)
	err = s.mailer.Send(ctx, mail.Message{
		To:      user.Email,
		ToName:  user.Name,
		Subject: "Reset your password",
		Text: fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password. It expires in %s.\n\n%s\n",
			user.Name, s.config.ResetTokenTTL, link),
	})
	if err != nil {
		s.logger.Error("Failed to send password reset email",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		if errors.Is(err, mail.ErrNotConfigured) {
			return err
		}
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to send reset email", err)
	}

	s.logger.Info("Password reset email sent", zap.String("user_id", user.ID.String()))
	return nil
}

// ResetPassword consumes a reset token and sets the new password
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	token := strings.TrimSpace(input.Token)
	if token == "" {
		return shared.NewDomainError("INVALID_RESET_TOKEN", "Reset link is invalid or has already been used")
	}
	user, err := s.userRepo.FindByResetTokenHash(ctx, identity.HashResetToken(token))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_RESET_TOKEN", "Reset link is invalid or has already been used")
		}
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to reset password", err)
	}

	if err := user.ResetPassword(token, input.NewPassword, s.now()); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to reset password", err)
	}

	s.logger.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *AuthService) issue(user *identity.User) (*LoginResult, error) {
	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		if errors.Is(err, auth.ErrMissingSecret) {
			return nil, shared.WrapDomainError(shared.ErrUnavailable.Code, "Authentication is not configured", err)
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to generate authentication token", err)
	}
	return &LoginResult{
		AccessToken: token.Value,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        toUserInfo(user),
	}, nil
}

func (s *AuthService) resetLink(token string) string {
	return strings.TrimRight(s.config.BaseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
