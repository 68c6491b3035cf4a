package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Dan9191/bankshot/internal/models"
	"github.com/Dan9191/bankshot/internal/repository"
	"github.com/Dan9191/bankshot/internal/session"
	"github.com/Dan9191/bankshot/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// resetTokenTTL is how long a password reset link stays valid.
const resetTokenTTL = time.Hour

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user, opens a signed-in session and returns a token
// for it
func (s *Service) Login(ctx context.Context, email, password string) (string, *session.Session, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	sess := s.sessions.Create()
	sess.Apply(func(st session.State) session.State {
		return session.SignIn(st, *user)
	})

	token, err := utils.IssueSessionToken(s.config.JWTSecret, user.ID, sess.ID, s.config.TokenTTL)
	if err != nil {
		s.sessions.Delete(sess.ID)
		return "", nil, err
	}

	s.log.WithField("session", sess.ID).Infof("User logged in: %s", user.Email)
	return token, sess, nil
}

// Authenticate resolves a session token to its live session
func (s *Service) Authenticate(token string) (*session.Session, error) {
	claims, err := utils.ParseSessionToken(s.config.JWTSecret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	sess, err := s.sessions.Get(claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if user := sess.State().User; user == nil || user.ID != claims.Subject {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

// Logout signs the session out and forgets it
func (s *Service) Logout(sess *session.Session) {
	sess.Apply(session.SignOut)
	s.sessions.Delete(sess.ID)
	s.log.WithField("session", sess.ID).Info("User logged out")
}

// ForgotPassword mails a reset link when the address belongs to a user.
// Unknown addresses get the same nil result so callers cannot probe for
// registered emails.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Infof("Password reset requested for unknown email %s", email)
		return nil
	}
	if err != nil {
		return err
	}

	expiry := s.now().Add(resetTokenTTL)
	token, err := utils.GenerateResetToken(user.ID, s.config.HMACSecret, expiry)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(user.Email, user.Username, token, expiry); err != nil {
		s.log.Warnf("Password reset email to %s failed: %v", user.Email, err)
	}
	return nil
}

// ResetPassword sets a new password for the user named by a reset token
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	userID, err := utils.VerifyResetToken(token, s.config.HMACSecret, s.now())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResetToken, err)
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return err
	}

	s.log.Infof("Password reset: %s", user.Email)
	return nil
}
