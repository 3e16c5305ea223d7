package errors_test

import (
	"encoding/json"
	"errors"
	"testing"

	apierr "github.com/opst/taskboard/pkg/api/types/errors"
	"github.com/opst/taskboard/pkg/utils/try"
)

func TestErrorMessage(t *testing.T) {
	t.Run("it marshals reason as error too, and hides the cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		b := try.To(json.Marshal(apierr.ErrorMessage{
			Reason: "Settings missing", Advice: "configure WhatsApp gateway", Cause: cause,
		})).OrFatal(t)

		expected := `{"error":"Settings missing","reason":"Settings missing","advice":"configure WhatsApp gateway"}`
		if string(b) != expected {
			t.Errorf("(actual, expected) = (%s, %s)", b, expected)
		}
	})

	t.Run("it unmarshals from reason or error", func(t *testing.T) {
		for name, when := range map[string]string{
			"reason": `{"reason":"not found","advice":"check id"}`,
			"error":  `{"error":"not found","advice":"check id"}`,
		} {
			t.Run(name, func(t *testing.T) {
				actual := apierr.ErrorMessage{}
				if err := json.Unmarshal([]byte(when), &actual); err != nil {
					t.Fatal(err)
				}
				if actual.Reason != "not found" || actual.Advice != "check id" {
					t.Errorf("unexpected message: %+v", actual)
				}
			})
		}
	})

	t.Run("it rejects a body without reason", func(t *testing.T) {
		actual := apierr.ErrorMessage{}
		if err := json.Unmarshal([]byte(`{"advice":"?"}`), &actual); err == nil {
			t.Error("expected error, but got nil")
		}
	})

	t.Run("it unwraps to the cause", func(t *testing.T) {
		cause := errors.New("cause")
		if !errors.Is(apierr.ErrorMessage{Reason: "r", Cause: cause}, cause) {
			t.Error("cause is lost")
		}
	})
}
