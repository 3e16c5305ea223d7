package mocks

import (
	"context"

	kdb "github.com/opst/taskboard/pkg/db"
)

type SchemaInterface struct {
	Impl struct {
		Upgrade func(ctx context.Context) error
		Version func(ctx context.Context) (int, error)
		Context func(ctx context.Context) (context.Context, context.CancelFunc)
	}

	Calls struct {
		Upgrade CallLog[struct{}]
		Version CallLog[struct{}]
		Context CallLog[struct{}]
	}
}

var _ kdb.SchemaInterface = &SchemaInterface{}

func NewSchemaInterface() *SchemaInterface {
	return &SchemaInterface{}
}

func (m *SchemaInterface) Upgrade(ctx context.Context) error {
	m.Calls.Upgrade = append(m.Calls.Upgrade, struct{}{})
	if m.Impl.Upgrade != nil {
		return m.Impl.Upgrade(ctx)
	}
	panic(errNotImplemented)
}

func (m *SchemaInterface) Version(ctx context.Context) (int, error) {
	m.Calls.Version = append(m.Calls.Version, struct{}{})
	if m.Impl.Version != nil {
		return m.Impl.Version(ctx)
	}
	panic(errNotImplemented)
}

// Context returns ctx as it is, unless Impl.Context is set.
func (m *SchemaInterface) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	m.Calls.Context = append(m.Calls.Context, struct{}{})
	if m.Impl.Context != nil {
		return m.Impl.Context(ctx)
	}
	return ctx, func() {}
}
