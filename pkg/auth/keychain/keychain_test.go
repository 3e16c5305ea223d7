package keychain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/opst/taskboard/pkg/auth/keychain"
	"github.com/opst/taskboard/pkg/auth/keychain/key"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/db/mocks"
	"github.com/opst/taskboard/pkg/utils/try"
)

type claims struct {
	jwt.RegisteredClaims
}

func newClaims(sub string, ttl time.Duration) *claims {
	return &claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}}
}

func TestKeychain_SignAndVerify(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewInMemoryKeychain()
	policy := key.HS256(48*time.Hour, 256/8)

	testee := try.To(keychain.New(ctx, "session", store, policy, time.Hour)).OrFatal(t)

	token := try.To(keychain.NewJWS(ctx, testee, newClaims("user-1", time.Hour))).OrFatal(t)

	t.Run("it verifies the token it has signed", func(t *testing.T) {
		c := try.To(keychain.VerifyJWS[*claims](ctx, testee, token)).OrFatal(t)
		if c.Subject != "user-1" {
			t.Errorf("subject: %s", c.Subject)
		}
	})

	t.Run("another keychain sharing the store verifies the token", func(t *testing.T) {
		other := try.To(keychain.New(ctx, "session", store, policy, time.Hour)).OrFatal(t)
		c := try.To(keychain.VerifyJWS[*claims](ctx, other, token)).OrFatal(t)
		if c.Subject != "user-1" {
			t.Errorf("subject: %s", c.Subject)
		}
	})

	t.Run("a keychain which has been created before signing reloads keys", func(t *testing.T) {
		store := mocks.NewInMemoryKeychain()
		early := try.To(keychain.New(ctx, "session", store, policy, time.Hour)).OrFatal(t)
		signer := try.To(keychain.New(ctx, "session", store, policy, time.Hour)).OrFatal(t)
		token := try.To(keychain.NewJWS(ctx, signer, newClaims("user-2", time.Hour))).OrFatal(t)

		c := try.To(keychain.VerifyJWS[*claims](ctx, early, token)).OrFatal(t)
		if c.Subject != "user-2" {
			t.Errorf("subject: %s", c.Subject)
		}
	})

	t.Run("it does not rotate while the key is usable", func(t *testing.T) {
		before := store.Calls.Lock.Times()
		try.To(keychain.NewJWS(ctx, testee, newClaims("user-1", time.Hour))).OrFatal(t)
		if after := store.Calls.Lock.Times(); after != before {
			t.Errorf("keychain is locked: %d -> %d", before, after)
		}
	})
}

func TestKeychain_Rotation(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewInMemoryKeychain()

	expiring := try.To(key.HS256(30*time.Minute, 32).Issue()).OrFatal(t)
	expired := try.To(key.HS256(-time.Minute, 32).Issue()).OrFatal(t)
	if err := store.Lock(ctx, "session", func(context.Context, []kdb.StoredKey) ([]kdb.StoredKey, error) {
		return []kdb.StoredKey{expiring.Stored(), expired.Stored()}, nil
	}); err != nil {
		t.Fatal(err)
	}

	testee := try.To(keychain.New(ctx, "session", store, key.HS256(48*time.Hour, 32), time.Hour)).OrFatal(t)
	k := try.To(testee.SigningKey(ctx)).OrFatal(t)

	if k.Equal(expiring) || k.Equal(expired) {
		t.Fatalf("key is not rotated: %s", k)
	}

	stored := try.To(store.Load(ctx, "session")).OrFatal(t)
	kids := map[string]bool{}
	for _, s := range stored {
		kids[s.Kid] = true
	}
	if !kids[k.Kid()] || !kids[expiring.Kid()] || kids[expired.Kid()] || len(kids) != 2 {
		t.Errorf("unexpected keys are stored: %v", kids)
	}

	t.Run("tokens signed with expiring key are still valid", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims("user-3", time.Minute))
		tok.Header["kid"] = expiring.Kid()
		token := try.To(tok.SignedString(expiring.ToSign())).OrFatal(t)

		c := try.To(keychain.VerifyJWS[*claims](ctx, testee, token)).OrFatal(t)
		if c.Subject != "user-3" {
			t.Errorf("subject: %s", c.Subject)
		}
	})
}

func TestVerifyJWS_Invalid(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewInMemoryKeychain()
	testee := try.To(keychain.New(ctx, "session", store, key.HS256(48*time.Hour, 32), time.Hour)).OrFatal(t)
	valid := try.To(keychain.NewJWS(ctx, testee, newClaims("user-1", time.Hour))).OrFatal(t)

	unknown := try.To(key.HS256(48*time.Hour, 32).Issue()).OrFatal(t)
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims("user-1", time.Hour))
	foreign.Header["kid"] = unknown.Kid()

	for name, token := range map[string]string{
		"malformed":        "not-a-token",
		"tampered":         valid[:len(valid)-2] + "xx",
		"expired":          try.To(keychain.NewJWS(ctx, testee, newClaims("user-1", -time.Minute))).OrFatal(t),
		"signed by others": try.To(foreign.SignedString(unknown.ToSign())).OrFatal(t),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := keychain.VerifyJWS[*claims](ctx, testee, token)
			if !errors.Is(err, keychain.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, but got %v", err)
			}
		})
	}
}

func TestSigningKey_PolicyFails(t *testing.T) {
	ctx := context.Background()
	expected := errors.New("fake error")
	testee := try.To(keychain.New(
		ctx, "session", mocks.NewInMemoryKeychain(), key.Failing(expected), time.Hour,
	)).OrFatal(t)

	if _, err := testee.SigningKey(ctx); !errors.Is(err, expected) {
		t.Errorf("expected %v, but got %v", expected, err)
	}
}
