package key_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/opst/taskboard/pkg/auth/keychain/key"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/utils/rfctime"
	"github.com/opst/taskboard/pkg/utils/try"
)

func TestHS256(t *testing.T) {
	ttl := 24 * time.Hour
	testee := key.HS256(ttl, 2048/8)
	before := time.Now().Truncate(time.Second)
	k := try.To(testee.Issue()).OrFatal(t)
	after := time.Now().Truncate(time.Second)

	t.Run("Alg", func(t *testing.T) {
		if got := k.Alg(); got != "HS256" {
			t.Errorf("Expected alg to be %q, but got %q", "HS256", got)
		}
	})

	t.Run("Kid", func(t *testing.T) {
		if k.Kid() == "" {
			t.Error("kid is empty")
		}
		other := try.To(testee.Issue()).OrFatal(t)
		if other.Kid() == k.Kid() {
			t.Errorf("kid is not unique: %s", k.Kid())
		}
	})

	t.Run("Exp", func(t *testing.T) {
		if got := k.Exp(); got.Before(before.Add(ttl)) || got.After(after.Add(ttl)) {
			t.Errorf(
				"Expected expiration time is between %s to %s, but got %s",
				rfctime.RFC3339(before.Add(ttl)), rfctime.RFC3339(after.Add(ttl)), rfctime.RFC3339(got),
			)
		}
	})

	t.Run("Sign and Verify", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		}
		signed := try.To(
			jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.ToSign()),
		).OrFatal(t)

		parsed := try.To(jwt.ParseWithClaims(
			signed, new(jwt.RegisteredClaims),
			func(*jwt.Token) (interface{}, error) { return k.ToVerify(), nil },
		)).OrFatal(t)
		if sub := try.To(parsed.Claims.GetSubject()).OrFatal(t); sub != "user-1" {
			t.Errorf("subject: %s", sub)
		}
	})

	t.Run("Stored and restored", func(t *testing.T) {
		restored := try.To(key.FromStored(k.Stored())).OrFatal(t)
		if !restored.Equal(k) {
			t.Errorf("restored key is different: %s != %s", restored, k)
		}
	})
}

func TestFromStored(t *testing.T) {
	for name, when := range map[string]kdb.StoredKey{
		"unsupported algorithm": {Kid: "k", Alg: "RS256", Exp: time.Now(), Key: []byte("x")},
		"empty key":             {Kid: "k", Alg: "HS256", Exp: time.Now()},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := key.FromStored(when); err == nil {
				t.Error("expected error, but not")
			}
		})
	}
}
