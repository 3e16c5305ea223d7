// Package auth registers users and checks their credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/opst/taskboard/pkg/auth/password"
	kdb "github.com/opst/taskboard/pkg/db"
	xe "github.com/opst/taskboard/pkg/errors"
)

var (
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrInvalidProfile    = errors.New("invalid profile")
	ErrEmailInUse        = fmt.Errorf("%w: email is in use", kdb.ErrConflict)
)

// NormalizeEmail validates the email address and returns it in lower case.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email: %q", ErrInvalidProfile, email)
	}
	return email, nil
}

type Service struct {
	users kdb.UserInterface
}

func New(users kdb.UserInterface) *Service {
	return &Service{users: users}
}

// Register creates a new COLLABORATOR.
//
// # Returns
//
// - error: ErrInvalidProfile, password.ErrWeakPassword or ErrEmailInUse.
func (s *Service) Register(ctx context.Context, name string, email string, pass string) (*kdb.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := password.Hash(pass)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, kdb.UserParam{
		Name: name, Email: email, PasswordHash: hash, Role: kdb.RoleCollaborator,
	})
	if errors.Is(err, kdb.ErrConflict) {
		return nil, errors.Join(ErrEmailInUse, err)
	} else if err != nil {
		return nil, xe.Wrap(err)
	}
	return u, nil
}

// Login checks the credential.
//
// # Returns
//
// - error: ErrInvalidCredential when the user is not found or the password is wrong.
func (s *Service) Login(ctx context.Context, email string, pass string) (*kdb.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pass == "" {
		return nil, ErrInvalidCredential
	}
	u, hash, err := s.users.Credential(ctx, email)
	if errors.Is(err, kdb.ErrMissing) {
		return nil, ErrInvalidCredential
	} else if err != nil {
		return nil, xe.Wrap(err)
	}
	if !password.Match(hash, pass) {
		return nil, ErrInvalidCredential
	}
	return u, nil
}

// UpdateProfile changes name, email and password (when not empty) of the user.
//
// # Returns
//
// - error: ErrInvalidProfile, password.ErrWeakPassword, ErrEmailInUse or kdb.ErrMissing.
func (s *Service) UpdateProfile(ctx context.Context, userId string, name string, email string, pass string) (*kdb.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	profile := kdb.UserProfile{Name: name, Email: email}
	if pass != "" {
		hash, err := password.Hash(pass)
		if err != nil {
			return nil, err
		}
		profile.PasswordHash = &hash
	}

	u, err := s.users.UpdateProfile(ctx, userId, profile)
	if errors.Is(err, kdb.ErrConflict) {
		return nil, errors.Join(ErrEmailInUse, err)
	} else if err != nil {
		return nil, xe.Wrap(err)
	}
	return u, nil
}
