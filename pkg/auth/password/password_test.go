package password_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/opst/taskboard/pkg/auth/password"
	"github.com/opst/taskboard/pkg/utils/try"
	"golang.org/x/crypto/bcrypt"
)

func TestValidate(t *testing.T) {
	for name, testcase := range map[string]struct {
		when string
		then bool
	}{
		"strong":                       {when: "Senha@123", then: true},
		"accented letters are special": {when: "Abcdefg1ç", then: true},
		"spaces are special":           {when: "Abcdefg1 x", then: true},
		"72 bytes":                     {when: "Aa1@" + strings.Repeat("x", 68), then: true},
		"non-ascii upper is not upper": {when: "çÃo@1234x", then: false},
		"too short":                    {when: "Ab1@", then: false},
		"longer than bcrypt takes":     {when: "Aa1@" + strings.Repeat("x", 69), then: false},
		"no upper case":                {when: "senha@123", then: false},
		"no lower case":                {when: "SENHA@123", then: false},
		"no digit":                     {when: "Senha@abc", then: false},
		"no special":                   {when: "Senha1234", then: false},
		"empty":                        {when: "", then: false},
	} {
		t.Run(name, func(t *testing.T) {
			err := password.Validate(testcase.when)
			if testcase.then {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, password.ErrWeakPassword) {
				t.Errorf("expected ErrWeakPassword, but got %v", err)
			}
		})
	}
}

func TestHashAndMatch(t *testing.T) {
	hash := try.To(password.Hash("Senha@123")).OrFatal(t)

	if cost := try.To(bcrypt.Cost([]byte(hash))).OrFatal(t); cost != password.Cost {
		t.Errorf("cost: (actual, expected) = (%d, %d)", cost, password.Cost)
	}
	if !password.Match(hash, "Senha@123") {
		t.Error("it does not match with the right password")
	}
	if password.Match(hash, "Senha@124") {
		t.Error("it matches with a wrong password")
	}
	if password.Match("", "") {
		t.Error("empty hash matches")
	}

	for _, weak := range []string{"weak", "Aa1@" + strings.Repeat("x", 80)} {
		if _, err := password.Hash(weak); !errors.Is(err, password.ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, but got %v", err)
		}
	}
}
