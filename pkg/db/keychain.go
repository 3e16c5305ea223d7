package db

import (
	"context"
	"time"
)

// key material stored in a keychain.
type StoredKey struct {
	Kid string
	Alg string
	Exp time.Time
	Key []byte
}

// Keychain is an interface for synchronizing access to keychain entries.
type KeychainInterface interface {
	// Load keys in the keychain.
	//
	// When the keychain does not exist, it returns an empty slice.
	Load(ctx context.Context, name string) ([]StoredKey, error)

	// Lock locks a keychain entry by name and executes the critical section.
	//
	// # Args
	//
	// - ctx (context.Context): The context of the operation.
	//
	// - name (string): The name of the keychain.
	//
	// - criticalSection: receives current keys and returns keys to be stored.
	// The returned keys replace whole of the keychain.
	// If the critical section returns an error, the transaction will be rolled back.
	//
	// # Returns
	//
	// - error: An error if the operation failed.
	Lock(
		ctx context.Context, name string,
		criticalSection func(ctx context.Context, current []StoredKey) ([]StoredKey, error),
	) error
}
