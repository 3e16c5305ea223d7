// Package keychain signs and verifies JWS with keys shared through the database.
//
// Keys are rotated: a key is used for signing while it lives longer than the
// margin, and kept for verification until it expires.
package keychain

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/opst/taskboard/pkg/auth/keychain/key"
	kdb "github.com/opst/taskboard/pkg/db"
	xe "github.com/opst/taskboard/pkg/errors"
)

var ErrNoKeyFound error = errors.New("no key found")
var ErrInvalidToken error = errors.New("invalid token")

type KeyRequirement func(k key.Key) bool

// WithAlg returns a KeyRequirement that filters the key by the algorithm.
func WithAlg(alg string) KeyRequirement {
	return func(k key.Key) bool {
		return k.Alg() == alg
	}
}

// WithExpAfter returns a KeyRequirement that filters the key by the expiration time.
//
// It returns true if the key's expiration time is after the given time.
func WithExpAfter(t time.Time) KeyRequirement {
	return func(k key.Key) bool {
		return k.Exp().After(t)
	}
}

// WithKeyId returns a KeyRequirement that filters the key by the Key ID.
func WithKeyId(kid string) KeyRequirement {
	return func(k key.Key) bool {
		return k.Kid() == kid
	}
}

type Keychain struct {
	name   string
	store  kdb.KeychainInterface
	policy key.KeyPolicy
	margin time.Duration

	mux  sync.RWMutex
	keys []key.Key
}

// New creates a Keychain backed by the store.
//
// # Args
//
// - name: name of the keychain in the store.
//
// - store: persistent storage of keys, shared among processes.
//
// - policy: issues new keys on rotation.
//
// - margin: keys expiring within margin are not used for signing.
// It should be longer than lifetime of signed tokens.
func New(ctx context.Context, name string, store kdb.KeychainInterface, policy key.KeyPolicy, margin time.Duration) (*Keychain, error) {
	kc := &Keychain{name: name, store: store, policy: policy, margin: margin}
	if err := kc.reload(ctx); err != nil {
		return nil, err
	}
	return kc, nil
}

func (kc *Keychain) Name() string {
	return kc.name
}

func (kc *Keychain) reload(ctx context.Context) error {
	stored, err := kc.store.Load(ctx, kc.name)
	if err != nil {
		return xe.Wrap(err)
	}
	keys, err := restore(stored)
	if err != nil {
		return err
	}
	kc.mux.Lock()
	defer kc.mux.Unlock()
	kc.keys = keys
	return nil
}

func restore(stored []kdb.StoredKey) ([]key.Key, error) {
	keys := make([]key.Key, 0, len(stored))
	for _, s := range stored {
		k, err := key.FromStored(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// GetKey returns a key satisfying all requirements, from keys in memory.
func (kc *Keychain) GetKey(req ...KeyRequirement) (key.Key, bool) {
	kc.mux.RLock()
	defer kc.mux.RUnlock()
	return find(kc.keys, req...)
}

func find(keys []key.Key, req ...KeyRequirement) (key.Key, bool) {
KEY:
	for _, k := range keys {
		for _, r := range req {
			if !r(k) {
				continue KEY
			}
		}
		return k, true
	}
	return nil, false
}

// SigningKey returns a key to sign, rotating keys when no key lives long enough.
//
// Expired keys are removed from the store on rotation.
func (kc *Keychain) SigningKey(ctx context.Context) (key.Key, error) {
	usable := func() KeyRequirement { return WithExpAfter(time.Now().Add(kc.margin)) }
	if k, ok := kc.GetKey(usable()); ok {
		return k, nil
	}

	var keys []key.Key
	err := kc.store.Lock(ctx, kc.name, func(ctx context.Context, current []kdb.StoredKey) ([]kdb.StoredKey, error) {
		cur, err := restore(current)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		keys = make([]key.Key, 0, len(cur)+1)
		for _, k := range cur {
			if k.Exp().After(now) {
				keys = append(keys, k)
			}
		}

		// another process may have rotated already.
		if _, ok := find(keys, usable()); !ok {
			k, err := kc.policy.Issue()
			if err != nil {
				return nil, err
			}
			keys = append([]key.Key{k}, keys...)
		}

		next := make([]kdb.StoredKey, 0, len(keys))
		for _, k := range keys {
			next = append(next, k.Stored())
		}
		return next, nil
	})
	if err != nil {
		return nil, xe.Wrap(err)
	}

	kc.mux.Lock()
	kc.keys = keys
	kc.mux.Unlock()

	k, ok := find(keys, usable())
	if !ok {
		return nil, fmt.Errorf("%w: new key expires too early", ErrNoKeyFound)
	}
	return k, nil
}

// verifyingKey finds a key for verification.
//
// Keys signed by other processes may be unknown yet, so it reloads once on miss.
func (kc *Keychain) verifyingKey(ctx context.Context, req ...KeyRequirement) (key.Key, error) {
	if k, ok := kc.GetKey(req...); ok {
		return k, nil
	}
	if err := kc.reload(ctx); err != nil {
		return nil, err
	}
	if k, ok := kc.GetKey(req...); ok {
		return k, nil
	}
	return nil, ErrNoKeyFound
}

// NewJWS signs for claim and returns a JWS (JSON Web Signature) token string
//
// # Args
//
// - ctx: Context
//
// - kc: Keychain to get the signing key
//
// - claims: Claims to be signed
//
// # Returns
//
// - string: JWT token string
//
// - error: from [Keychain.SigningKey] or [jwt.Token.SignedString]
func NewJWS[C jwt.Claims](ctx context.Context, kc *Keychain, claims C) (string, error) {
	k, err := kc.SigningKey(ctx)
	if err != nil {
		return "", err
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = k.Kid()
	return tok.SignedString(k.ToSign())
}

// VerifyJWS verifies a JWS (JSON Web Signature) token and returns the claims
//
// # Args
//
// - ctx: Context
//
// - kc: Keychain to find the key to verify the token
//
// - token: JWT token string
//
// # Returns
//
// - C: Claims. The type C should be a pointer to a struct that implements [jwt.Claims].
//
// - error: [ErrInvalidToken] when the token is malformed, expired or not signed by known keys.
func VerifyJWS[C jwt.Claims](ctx context.Context, kc *Keychain, token string) (C, error) {
	now := time.Now()

	_c := *new(C)
	{
		rc := reflect.ValueOf(_c)
		if rc.Kind() != reflect.Ptr {
			return *new(C), errors.New("claims type must be a pointer")
		}
		_c = reflect.New(rc.Type().Elem()).Interface().(C)
	}

	tok, err := jwt.ParseWithClaims(
		token, _c,
		func(t *jwt.Token) (interface{}, error) {
			q := []KeyRequirement{WithExpAfter(now), WithAlg(t.Method.Alg())}
			kid, ok := t.Header["kid"].(string)
			if !ok {
				return nil, ErrNoKeyFound
			}
			q = append(q, WithKeyId(kid))
			k, err := kc.verifyingKey(ctx, q...)
			if err != nil {
				return nil, err
			}
			return k.ToVerify(), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoKeyFound),
			errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenUnverifiable),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenExpired),
			errors.Is(err, jwt.ErrTokenNotValidYet):
			return *new(C), errors.Join(ErrInvalidToken, err)
		}
		return *new(C), err
	}
	if c, ok := tok.Claims.(C); ok {
		return c, nil
	}
	return *new(C), fmt.Errorf("%w: unexpected claims type: %T", ErrInvalidToken, tok.Claims)
}
