package mocks

import (
	"context"
	"sync"

	kdb "github.com/opst/taskboard/pkg/db"
)

type IntegrationInterface struct {
	Impl struct {
		Find   func(ctx context.Context, userId string, provider string) ([]kdb.Integration, error)
		Get    func(ctx context.Context, userId string, integrationIds []string) (map[string]kdb.Integration, error)
		Upsert func(ctx context.Context, param kdb.IntegrationParam) (*kdb.Integration, error)
	}

	Calls struct {
		Find CallLog[struct {
			UserId   string
			Provider string
		}]
		Get CallLog[struct {
			UserId         string
			IntegrationIds []string
		}]
		Upsert CallLog[kdb.IntegrationParam]
	}

	mux sync.Mutex
}

var _ kdb.IntegrationInterface = &IntegrationInterface{}

func NewIntegrationInterface() *IntegrationInterface {
	return &IntegrationInterface{}
}

func (m *IntegrationInterface) Find(ctx context.Context, userId string, provider string) ([]kdb.Integration, error) {
	m.mux.Lock()
	m.Calls.Find = append(m.Calls.Find, struct {
		UserId   string
		Provider string
	}{UserId: userId, Provider: provider})
	m.mux.Unlock()
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, userId, provider)
	}
	panic(errNotImplemented)
}

func (m *IntegrationInterface) Get(ctx context.Context, userId string, integrationIds []string) (map[string]kdb.Integration, error) {
	m.mux.Lock()
	m.Calls.Get = append(m.Calls.Get, struct {
		UserId         string
		IntegrationIds []string
	}{UserId: userId, IntegrationIds: integrationIds})
	m.mux.Unlock()
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, userId, integrationIds)
	}
	panic(errNotImplemented)
}

func (m *IntegrationInterface) Upsert(ctx context.Context, param kdb.IntegrationParam) (*kdb.Integration, error) {
	m.mux.Lock()
	m.Calls.Upsert = append(m.Calls.Upsert, param)
	m.mux.Unlock()
	if m.Impl.Upsert != nil {
		return m.Impl.Upsert(ctx, param)
	}
	panic(errNotImplemented)
}
