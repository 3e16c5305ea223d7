package mocks

import (
	"context"
	"sync"

	kdb "github.com/opst/taskboard/pkg/db"
)

type KeychainInterface struct {
	Impl struct {
		Load func(ctx context.Context, name string) ([]kdb.StoredKey, error)
		Lock func(ctx context.Context, name string, criticalSection func(context.Context, []kdb.StoredKey) ([]kdb.StoredKey, error)) error
	}

	Calls struct {
		Load CallLog[string]
		Lock CallLog[string]
	}

	mux sync.Mutex
}

var _ kdb.KeychainInterface = &KeychainInterface{}

func NewKeychainInterface() *KeychainInterface {
	return &KeychainInterface{}
}

// NewInMemoryKeychain returns a mock storing keys in memory.
func NewInMemoryKeychain() *KeychainInterface {
	m := NewKeychainInterface()
	store := map[string][]kdb.StoredKey{}
	var storeMux sync.Mutex

	m.Impl.Load = func(ctx context.Context, name string) ([]kdb.StoredKey, error) {
		storeMux.Lock()
		defer storeMux.Unlock()
		return append([]kdb.StoredKey{}, store[name]...), nil
	}
	m.Impl.Lock = func(
		ctx context.Context, name string,
		criticalSection func(context.Context, []kdb.StoredKey) ([]kdb.StoredKey, error),
	) error {
		storeMux.Lock()
		defer storeMux.Unlock()
		next, err := criticalSection(ctx, append([]kdb.StoredKey{}, store[name]...))
		if err != nil {
			return err
		}
		store[name] = next
		return nil
	}
	return m
}

func (m *KeychainInterface) Load(ctx context.Context, name string) ([]kdb.StoredKey, error) {
	m.mux.Lock()
	m.Calls.Load = append(m.Calls.Load, name)
	m.mux.Unlock()
	if m.Impl.Load != nil {
		return m.Impl.Load(ctx, name)
	}
	panic(errNotImplemented)
}

func (m *KeychainInterface) Lock(
	ctx context.Context, name string,
	criticalSection func(context.Context, []kdb.StoredKey) ([]kdb.StoredKey, error),
) error {
	m.mux.Lock()
	m.Calls.Lock = append(m.Calls.Lock, name)
	m.mux.Unlock()
	if m.Impl.Lock != nil {
		return m.Impl.Lock(ctx, name, criticalSection)
	}
	panic(errNotImplemented)
}
