package key

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	kdb "github.com/opst/taskboard/pkg/db"
	"github.com/opst/taskboard/pkg/utils/rfctime"
)

type Key interface {
	// Key ID
	Kid() string

	// Name of the algorithm
	Alg() string

	// Expiration time of the key
	Exp() time.Time

	// Key to sign messages.
	ToSign() any

	// Key to verify messages.
	ToVerify() any

	Equal(k Key) bool

	String() string

	// Stored returns the key in the form to be persisted.
	Stored() kdb.StoredKey
}

// FromStored restores a Key persisted in a keychain.
func FromStored(s kdb.StoredKey) (Key, error) {
	switch s.Alg {
	case jwt.SigningMethodHS256.Name:
		if len(s.Key) == 0 {
			return nil, fmt.Errorf("empty key: %s", s.Kid)
		}
		return &hs256Key{kid: s.Kid, exp: s.Exp, secret: s.Key}, nil
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", s.Alg)
	}
}

type KeyPolicy interface {
	// Issue a new key
	Issue() (Key, error)
}

type hs256policy struct {
	ttl    time.Duration
	keyLen uint
}

// HS256 returns a KeyPolicy for HMAC-SHA256 algorithm.
//
// # Args
//
// - ttl: Time to live of new keys
//
// - klen: Length of the key in *bytes*, not bits.
func HS256(ttl time.Duration, klen uint) KeyPolicy {
	return hs256policy{ttl: ttl, keyLen: klen}
}

func (p hs256policy) Issue() (Key, error) {
	k := make([]byte, p.keyLen)
	if _, err := rand.Read(k); err != nil {
		return nil, err
	}
	return &hs256Key{
		kid:    uuid.NewString(),
		exp:    time.Now().Add(p.ttl).Truncate(time.Second),
		secret: k,
	}, nil
}

type hs256Key struct {
	kid    string
	exp    time.Time
	secret []byte
}

func (hk *hs256Key) Kid() string {
	return hk.kid
}

func (*hs256Key) Alg() string {
	return jwt.SigningMethodHS256.Name
}

func (hk *hs256Key) Exp() time.Time {
	return hk.exp
}

func (hk *hs256Key) ToSign() any {
	return hk.secret
}

func (hk *hs256Key) ToVerify() any {
	return hk.secret
}

func (hk *hs256Key) Equal(k Key) bool {
	other, ok := k.(*hs256Key)
	if !ok {
		return false
	}
	return hk.kid == other.kid &&
		hk.exp.Equal(other.exp) &&
		bytes.Equal(hk.secret, other.secret)
}

func (hk *hs256Key) Stored() kdb.StoredKey {
	return kdb.StoredKey{
		Kid: hk.kid,
		Alg: hk.Alg(),
		Exp: hk.exp,
		Key: bytes.Clone(hk.secret),
	}
}

func (hk *hs256Key) String() string {
	return fmt.Sprintf(
		"Key{Kid: %s, Alg: %s, Exp: %s, Secret: (%d bytes)}",
		hk.kid, hk.Alg(), rfctime.RFC3339(hk.exp), len(hk.secret),
	)
}

type fixedKeyPolicy struct {
	k Key
}

// Fixed returns a KeyPolicy that always returns the same key.
func Fixed(k Key) KeyPolicy {
	return &fixedKeyPolicy{k: k}
}

func (fk *fixedKeyPolicy) Issue() (Key, error) {
	return fk.k, nil
}

type failingKeyPolicy struct {
	err error
}

// Failing returns a KeyPolicy that always fails with the given error.
//
// This is useful for testing.
func Failing(err error) KeyPolicy {
	return &failingKeyPolicy{err: err}
}

func (fk *failingKeyPolicy) Issue() (Key, error) {
	return nil, fk.err
}
