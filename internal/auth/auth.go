// Package auth implements registration, login, session tokens and the gate
// that resolves a request's token to a registered user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"todolist-api/internal/models"
	"todolist-api/internal/storage"
)

// MaxNameLen is the longest accepted user name, in characters.
const MaxNameLen = 50

var (
	// ErrBadCredentials is returned by [Service.Authenticate] for both an
	// unknown user and a wrong password.
	ErrBadCredentials = errors.New("could not verify")
	// ErrMissingToken is returned by the gate when the request has no token.
	ErrMissingToken = errors.New("a valid token is missing")
	// ErrInvalidToken is returned by the gate for any token that does not
	// resolve to a registered user.
	ErrInvalidToken = errors.New("token is invalid")
)

// ValidationError reports a missing or out-of-range input field.
type ValidationError string

// Error satisfies [error].
func (e ValidationError) Error() string { return string(e) }

// ValidateCredentials checks a name/password pair before it is stored.
func ValidateCredentials(name, password string) error {
	switch {
	case name == "" || password == "":
		return ValidationError("username and password required")
	case utf8.RuneCountInString(name) > MaxNameLen:
		return ValidationError(fmt.Sprintf("username must be at most %d characters", MaxNameLen))
	case len(password) > MaxPasswordLen:
		return ValidationError(fmt.Sprintf("password must be at most %d bytes", MaxPasswordLen))
	}
	return nil
}

// Service ties the credential store, the hasher and the token codec together.
type Service struct {
	users  storage.Users
	hasher Hasher
	codec  *Codec
}

func NewService(users storage.Users, hasher Hasher, codec *Codec) *Service {
	return &Service{users: users, hasher: hasher, codec: codec}
}

// Register validates and stores a new user. A taken name yields
// storage.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, name, password string) (models.User, error) {
	if err := ValidateCredentials(name, password); err != nil {
		return models.User{}, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.CreateUser(ctx, name, hash)
}

// Authenticate checks the credentials and issues a fresh session token.
func (s *Service) Authenticate(ctx context.Context, name, password string) (string, error) {
	user, err := s.users.GetUserByName(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrBadCredentials
	} else if err != nil {
		return "", err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrBadCredentials
	}
	return s.codec.Issue(user.Name)
}
