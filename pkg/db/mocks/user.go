package mocks

import (
	"context"

	kdb "github.com/opst/taskboard/pkg/db"
)

type UserInterface struct {
	Impl struct {
		Get           func(ctx context.Context, userId string) (*kdb.User, error)
		Credential    func(ctx context.Context, email string) (*kdb.User, string, error)
		List          func(ctx context.Context) ([]kdb.User, error)
		Create        func(ctx context.Context, param kdb.UserParam) (*kdb.User, error)
		UpdateProfile func(ctx context.Context, userId string, profile kdb.UserProfile) (*kdb.User, error)
		Assign        func(ctx context.Context, userId string, assignment kdb.UserAssignment) (*kdb.User, error)
		Promote       func(ctx context.Context, email string, name string) (*kdb.User, error)
		SetPassword   func(ctx context.Context, email string, passwordHash string) error
	}

	Calls struct {
		Get           CallLog[string]
		Credential    CallLog[string]
		List          CallLog[struct{}]
		Create        CallLog[kdb.UserParam]
		UpdateProfile CallLog[struct {
			UserId  string
			Profile kdb.UserProfile
		}]
		Assign CallLog[struct {
			UserId     string
			Assignment kdb.UserAssignment
		}]
		Promote CallLog[struct {
			Email string
			Name  string
		}]
		SetPassword CallLog[struct {
			Email        string
			PasswordHash string
		}]
	}
}

var _ kdb.UserInterface = &UserInterface{}

func NewUserInterface() *UserInterface {
	return &UserInterface{}
}

func (m *UserInterface) Get(ctx context.Context, userId string) (*kdb.User, error) {
	m.Calls.Get = append(m.Calls.Get, userId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, userId)
	}
	panic(errNotImplemented)
}

func (m *UserInterface) Credential(ctx context.Context, email string) (*kdb.User, string, error) {
	m.Calls.Credential = append(m.Calls.Credential, email)
	if m.Impl.Credential != nil {
		return m.Impl.Credential(ctx, email)
	}
	panic(errNotImplemented)
}

func (m *UserInterface) List(ctx context.Context) ([]kdb.User, error) {
	m.Calls.List = append(m.Calls.List, struct{}{})
	if m.Impl.List != nil {
		return m.Impl.List(ctx)
	}
	panic(errNotImplemented)
}

func (m *UserInterface) Create(ctx context.Context, param kdb.UserParam) (*kdb.User, error) {
	m.Calls.Create = append(m.Calls.Create, param)
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, param)
	}
	panic(errNotImplemented)
}

func (m *UserInterface) UpdateProfile(ctx context.Context, userId string, profile kdb.UserProfile) (*kdb.User, error) {
	m.Calls.UpdateProfile = append(m.Calls.UpdateProfile, struct {
		UserId  string
		Profile kdb.UserProfile
	}{UserId: userId, Profile: profile})
	if m.Impl.UpdateProfile != nil {
		return m.Impl.UpdateProfile(ctx, userId, profile)
	}
	panic(errNotImplemented)
}

func (m *UserInterface) Assign(ctx context.Context, userId string, assignment kdb.UserAssignment) (*kdb.User, error) {
	m.Calls.Assign = append(m.Calls.Assign, struct {
		UserId     string
		Assignment kdb.UserAssignment
	}{UserId: userId, Assignment: assignment})
	if m.Impl.Assign != nil {
		return m.Impl.Assign(ctx, userId, assignment)
	}
	panic(errNotImplemented)
}

func (m *UserInterface) Promote(ctx context.Context, email string, name string) (*kdb.User, error) {
	m.Calls.Promote = append(m.Calls.Promote, struct {
		Email string
		Name  string
	}{Email: email, Name: name})
	if m.Impl.Promote != nil {
		return m.Impl.Promote(ctx, email, name)
	}
	panic(errNotImplemented)
}

func (m *UserInterface) SetPassword(ctx context.Context, email string, passwordHash string) error {
	m.Calls.SetPassword = append(m.Calls.SetPassword, struct {
		Email        string
		PasswordHash string
	}{Email: email, PasswordHash: passwordHash})
	if m.Impl.SetPassword != nil {
		return m.Impl.SetPassword(ctx, email, passwordHash)
	}
	panic(errNotImplemented)
}
