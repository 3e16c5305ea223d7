package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleCollaborator Role = "COLLABORATOR"
)

func AsRole(s string) (Role, error) {
	switch Role(strings.ToUpper(s)) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleCollaborator:
		return RoleCollaborator, nil
	}
	return "", fmt.Errorf("unknown role: %s", s)
}

type User struct {
	Id        string
	Name      string
	Email     string
	Image     *string
	Role      Role
	TeamId    *string
	TeamName  *string
	CreatedAt time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type UserParam struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// new profile of a user.
//
// When PasswordHash is nil, the password is not changed.
type UserProfile struct {
	Name         string
	Email        string
	PasswordHash *string
}

// change of role and/or team by administrators.
type UserAssignment struct {
	// nil means "not changed".
	Role *Role

	// nil means "not changed", unless ClearTeam is true.
	TeamId *string

	// when true, the user leaves from the team.
	ClearTeam bool
}

type UserInterface interface {
	// Get a user by id.
	//
	// # Returns
	//
	// - error: ErrMissing when not found.
	Get(ctx context.Context, userId string) (*User, error)

	// Credential returns the user and the password hash for the email.
	//
	// # Returns
	//
	// - *User
	//
	// - string: bcrypt hash. empty when the user has no password.
	//
	// - error: ErrMissing when not found.
	Credential(ctx context.Context, email string) (*User, string, error)

	// List all users ordered by name.
	List(ctx context.Context) ([]User, error)

	// Create a user.
	//
	// # Returns
	//
	// - error: ErrConflict when the email is used by another user.
	Create(ctx context.Context, param UserParam) (*User, error)

	// UpdateProfile changes name, email and, optionally, password.
	//
	// # Returns
	//
	// - error: ErrConflict when the email is used by another user. ErrMissing when not found.
	UpdateProfile(ctx context.Context, userId string, profile UserProfile) (*User, error)

	// Assign changes role and team.
	//
	// # Returns
	//
	// - error: ErrMissing when the user or the team is not found.
	Assign(ctx context.Context, userId string, assignment UserAssignment) (*User, error)

	// Promote makes the user for the email an ADMIN, creating the user when missing.
	Promote(ctx context.Context, email string, name string) (*User, error)

	// SetPassword replaces the password hash of the user for the email.
	//
	// # Returns
	//
	// - error: ErrMissing when not found.
	SetPassword(ctx context.Context, email string, passwordHash string) error
}
