package mocks

import (
	"context"

	kdb "github.com/opst/taskboard/pkg/db"
)

type SettingsInterface struct {
	Impl struct {
		Get  func(ctx context.Context) (*kdb.Settings, error)
		Save func(ctx context.Context, settings kdb.Settings) (*kdb.Settings, error)
	}

	Calls struct {
		Get  CallLog[struct{}]
		Save CallLog[kdb.Settings]
	}
}

var _ kdb.SettingsInterface = &SettingsInterface{}

func NewSettingsInterface() *SettingsInterface {
	return &SettingsInterface{}
}

func (m *SettingsInterface) Get(ctx context.Context) (*kdb.Settings, error) {
	m.Calls.Get = append(m.Calls.Get, struct{}{})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx)
	}
	panic(errNotImplemented)
}

func (m *SettingsInterface) Save(ctx context.Context, settings kdb.Settings) (*kdb.Settings, error) {
	m.Calls.Save = append(m.Calls.Save, settings)
	if m.Impl.Save != nil {
		return m.Impl.Save(ctx, settings)
	}
	panic(errNotImplemented)
}
