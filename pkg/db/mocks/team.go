package mocks

import (
	"context"

	kdb "github.com/opst/taskboard/pkg/db"
)

type TeamInterface struct {
	Impl struct {
		List   func(ctx context.Context) ([]kdb.Team, error)
		Create func(ctx context.Context, name string) (*kdb.Team, error)
		Delete func(ctx context.Context, teamId string) error
	}

	Calls struct {
		List   CallLog[struct{}]
		Create CallLog[string]
		Delete CallLog[string]
	}
}

var _ kdb.TeamInterface = &TeamInterface{}

func NewTeamInterface() *TeamInterface {
	return &TeamInterface{}
}

func (m *TeamInterface) List(ctx context.Context) ([]kdb.Team, error) {
	m.Calls.List = append(m.Calls.List, struct{}{})
	if m.Impl.List != nil {
		return m.Impl.List(ctx)
	}
	panic(errNotImplemented)
}

func (m *TeamInterface) Create(ctx context.Context, name string) (*kdb.Team, error) {
	m.Calls.Create = append(m.Calls.Create, name)
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, name)
	}
	panic(errNotImplemented)
}

func (m *TeamInterface) Delete(ctx context.Context, teamId string) error {
	m.Calls.Delete = append(m.Calls.Delete, teamId)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, teamId)
	}
	panic(errNotImplemented)
}
