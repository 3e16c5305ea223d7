// Package session issues session tokens and resolves the principal of requests.
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/opst/taskboard/pkg/access"
	binderr "github.com/opst/taskboard/pkg/api-types-binding/errors"
	"github.com/opst/taskboard/pkg/auth/keychain"
	kdb "github.com/opst/taskboard/pkg/db"
)

const DefaultCookieName = "taskboard_session"

const DefaultTTL = 7 * 24 * time.Hour

const issuer = "taskboard"

var ErrUnauthenticated = errors.New("unauthenticated")

type Config struct {
	// name of the session cookie
	Cookie string

	// lifetime of sessions
	TTL time.Duration

	// when true, the cookie is sent only over HTTPS.
	Secure bool
}

type Claims struct {
	jwt.RegisteredClaims
}

type Manager struct {
	kc   *keychain.Keychain
	conf Config
}

func New(kc *keychain.Keychain, conf Config) *Manager {
	if conf.Cookie == "" {
		conf.Cookie = DefaultCookieName
	}
	if conf.TTL <= 0 {
		conf.TTL = DefaultTTL
	}
	return &Manager{kc: kc, conf: conf}
}

// Issue a session token for the user, and the cookie carrying it.
func (m *Manager) Issue(ctx context.Context, userId string) (string, *http.Cookie, error) {
	now := time.Now()
	exp := now.Add(m.conf.TTL)
	token, err := keychain.NewJWS(ctx, m.kc, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userId,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}})
	if err != nil {
		return "", nil, err
	}
	return token, m.cookie(token, exp), nil
}

func (m *Manager) cookie(value string, exp time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     m.conf.Cookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.conf.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}

// Clear returns a cookie removing the session cookie.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie("", time.Unix(0, 0))
}

// Verify the token and return the user id in it.
//
// # Returns
//
// - error: ErrUnauthenticated when the token is not valid.
func (m *Manager) Verify(ctx context.Context, token string) (string, error) {
	c, err := keychain.VerifyJWS[*Claims](ctx, m.kc, token)
	if err != nil {
		if errors.Is(err, keychain.ErrInvalidToken) {
			return "", errors.Join(ErrUnauthenticated, err)
		}
		return "", err
	}
	if c.Issuer != issuer || c.Subject == "" {
		return "", ErrUnauthenticated
	}
	return c.Subject, nil
}

// TokenOf extracts a session token from the request.
//
// "Authorization: Bearer" header precedes the cookie.
func (m *Manager) TokenOf(r *http.Request) (string, bool) {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && token != "" {
			return strings.TrimSpace(token), true
		}
	}
	if c, err := r.Cookie(m.conf.Cookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

const userKey = "taskboard.user"

// Middleware authenticates requests.
//
// The user is reloaded from the database for each request,
// so changes of role or team take effect immediately.
func (m *Manager) Middleware(users kdb.UserInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := m.TokenOf(c.Request())
			if !ok {
				return binderr.Unauthorized("not signed in", ErrUnauthenticated)
			}
			ctx := c.Request().Context()
			userId, err := m.Verify(ctx, token)
			if errors.Is(err, ErrUnauthenticated) {
				return binderr.Unauthorized("session is not valid", err)
			} else if err != nil {
				return binderr.InternalServerError(err)
			}

			u, err := users.Get(ctx, userId)
			if errors.Is(err, kdb.ErrMissing) {
				return binderr.Unauthorized("user is not found", err)
			} else if err != nil {
				return binderr.InternalServerError(err)
			}

			Set(c, *u)
			return next(c)
		}
	}
}

// Set the authenticated user to the request context.
func Set(c echo.Context, u kdb.User) {
	c.Set(userKey, u)
}

// UserOf returns the authenticated user of the request.
func UserOf(c echo.Context) (kdb.User, bool) {
	u, ok := c.Get(userKey).(kdb.User)
	return u, ok
}

// PrincipalOf returns the principal of the request.
//
// It should be called in handlers under Middleware.
// Otherwise, it returns ErrUnauthenticated.
func PrincipalOf(c echo.Context) (access.Principal, error) {
	u, ok := UserOf(c)
	if !ok {
		return access.Principal{}, ErrUnauthenticated
	}
	return access.PrincipalOf(u), nil
}
