package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/social-connect/backend/internal/models"
	"github.com/anonto42/social-connect/backend/internal/repositories"
	"github.com/anonto42/social-connect/backend/pkg/gravatar"
)

const (
	minPasswordChars = 6
	maxPasswordBytes = 72
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer signs identity tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// UserService handles registration, login and identity lookups.
type UserService struct {
	users    repositories.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	firebase IDTokenVerifier
	now      func() time.Time
}

func NewUserService(users repositories.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// WithFirebase enables FirebaseLogin.
func (s *UserService) WithFirebase(verifier IDTokenVerifier) *UserService {
	s.firebase = verifier
	return s
}

// FirebaseEnabled reports whether Firebase login is configured.
func (s *UserService) FirebaseEnabled() bool {
	return s.firebase != nil
}

// Register creates an account and returns a token for it.
func (s *UserService) Register(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return "", &ValidationError{Field: "name", Message: "Name is required"}
	}
	if email == "" {
		return "", &ValidationError{Field: "email", Message: "Please include a valid e-mail"}
	}
	if utf8.RuneCountInString(password) < minPasswordChars {
		return "", &ValidationError{Field: "password", Message: "Please enter a password with 6 or more characters"}
	}
	// bcrypt only accepts up to 72 bytes, whatever the character count.
	if len(password) > maxPasswordBytes {
		return "", &ValidationError{Field: "password", Message: "Password must be at most 72 bytes"}
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", ErrUserExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return "", err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: digest,
		Avatar:   gravatar.URL(email),
		Date:     s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return "", ErrUserExists
		}
		return "", err
	}

	return s.tokens.Issue(user.ID)
}

// Authenticate checks the credentials and returns a token. Unknown email
// and wrong password are both ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !s.hasher.Verify(password, user.Password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID)
}

// CurrentUser returns the account behind an authenticated user id.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return user, nil
}

// FirebaseLogin exchanges a Firebase ID token for a local token, creating
// the account on first login. Such accounts have no local password.
func (s *UserService) FirebaseLogin(ctx context.Context, idToken string) (string, error) {
	if s.firebase == nil {
		return "", errors.New("firebase login is not configured")
	}

	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	email, _ := token.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return "", &ValidationError{Field: "idToken", Message: "Firebase account has no e-mail"}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return s.tokens.Issue(user.ID)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return "", err
	}

	name, _ := token.Claims["name"].(string)
	if strings.TrimSpace(name) == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	avatar := gravatar.URL(email)
	if picture, ok := token.Claims["picture"].(string); ok && picture != "" {
		avatar = picture
	}

	user = &models.User{
		Name:   strings.TrimSpace(name),
		Email:  email,
		Avatar: avatar,
		Date:   s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, repositories.ErrDuplicateEmail) {
			return "", err
		}
		// Created concurrently by another login.
		if user, err = s.users.GetUserByEmail(ctx, email); err != nil {
			return "", err
		}
	}
	return s.tokens.Issue(user.ID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
