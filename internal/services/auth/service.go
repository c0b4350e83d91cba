// Package auth implements account registration, login and session procedures.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/user"
	"github.com/seedbotics/fieldgate/internal/identity"
	"github.com/seedbotics/fieldgate/internal/metrics"
	"github.com/seedbotics/fieldgate/internal/storage"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// Credentials is the login response payload.
type Credentials struct {
	User      user.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	FarmName    string `json:"farmName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// Service handles account procedures.
type Service struct {
	store  storage.UserStore
	issuer identity.Issuer
	log    *logger.Logger
}

// New constructs an auth service.
func New(store storage.UserStore, issuer identity.Issuer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Service{store: store, issuer: issuer, log: log}
}

// Register creates an account and returns fresh credentials. A duplicate email
// is a conflict regardless of case.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Credentials, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)

	if err := validateRegistration(in); err != nil {
		metrics.RecordAuthAttempt("register", false)
		return Credentials{}, err
	}

	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		metrics.RecordAuthAttempt("register", false)
		return Credentials{}, apperr.Conflict("email already registered")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Credentials{}, apperr.Internal("lookup email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Credentials{}, apperr.Internal("hash password", err)
	}

	created, err := s.store.PutUser(ctx, user.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		FarmName:     strings.TrimSpace(in.FarmName),
		Role:         user.RoleFarmer,
		IsVerified:   false,
		Preferences:  user.DefaultPreferences(),
	})
	if err != nil {
		return Credentials{}, apperr.Internal("create user", err)
	}

	token, expiresAt, err := s.issuer.Issue(created)
	if err != nil {
		return Credentials{}, apperr.Internal("issue token", err)
	}

	metrics.RecordAuthAttempt("register", true)
	s.log.WithField("user_id", created.ID).Info("user registered")
	return Credentials{User: created, Token: token, ExpiresAt: expiresAt}, nil
}

// Login verifies credentials and returns a fresh token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Credentials, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Credentials{}, apperr.ValidationField("email", "email is required")
	}
	if password == "" {
		return Credentials{}, apperr.ValidationField("password", "password is required")
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.RecordAuthAttempt("login", false)
			return Credentials{}, invalidCredentials()
		}
		return Credentials{}, apperr.Internal("lookup email", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		metrics.RecordAuthAttempt("login", false)
		return Credentials{}, invalidCredentials()
	}

	now := time.Now().UTC()
	u, err = s.store.UpdateUser(ctx, u.ID, user.Patch{LastLoginAt: &now})
	if err != nil {
		return Credentials{}, apperr.Internal("stamp last login", err)
	}

	token, expiresAt, err := s.issuer.Issue(u)
	if err != nil {
		return Credentials{}, apperr.Internal("issue token", err)
	}

	metrics.RecordAuthAttempt("login", true)
	s.log.WithField("user_id", u.ID).Info("user logged in")
	return Credentials{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

// Me returns the caller's account record.
func (s *Service) Me(ctx context.Context, userID string) (user.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, apperr.NotFound("user")
		}
		return user.User{}, apperr.Internal("load user", err)
	}
	return u, nil
}

// Logout invalidates nothing server-side; tokens are stateless and the client
// discards its copy. The call exists so the app has a single auth surface.
func (s *Service) Logout(_ context.Context, userID string) error {
	s.log.WithField("user_id", userID).Debug("user logged out")
	return nil
}

// UpdateProfile applies a partial update to the caller's account.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch user.Patch) (user.User, error) {
	u, err := s.store.UpdateUser(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, apperr.NotFound("user")
		}
		return user.User{}, apperr.Internal("update user", err)
	}
	return u, nil
}

func invalidCredentials() *apperr.ServiceError {
	return apperr.Unauthorized("invalid email or password")
}

func validateRegistration(in RegisterInput) error {
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return apperr.ValidationField("email", "a valid email is required")
	}
	if len(in.Password) < 8 {
		return apperr.ValidationField("password", "password must be at least 8 characters")
	}
	if len(in.Name) < 2 {
		return apperr.ValidationField("name", "name must be at least 2 characters")
	}
	return nil
}
