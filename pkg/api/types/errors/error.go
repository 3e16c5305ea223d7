package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorMessage is the body of error responses.
//
// It is marshalled as
//
//	{"error": "<reason>", "reason": "<reason>", "advice": "...", "see": "..."}
//
// "error" duplicates "reason" for clients reading only that field.
type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
	See    string `json:"see,omitempty"`
	Cause  error  `json:"-"`
}

type errorMessageBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
	See    string `json:"see,omitempty"`
}

func (e ErrorMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(errorMessageBody{
		Error:  e.Reason,
		Reason: e.Reason,
		Advice: e.Advice,
		See:    e.See,
	})
}

func (em *ErrorMessage) UnmarshalJSON(bytes []byte) error {
	f := new(struct {
		Error  *string `json:"error"`
		Reason *string `json:"reason"`
		Advice *string `json:"advice,omitempty"`
		See    *string `json:"see,omitempty"`
	})
	if err := json.Unmarshal(bytes, f); err != nil {
		return err
	}

	switch {
	case f.Reason != nil:
		em.Reason = *f.Reason
	case f.Error != nil:
		em.Reason = *f.Error
	default:
		return fmt.Errorf(`required field missing: "reason"`)
	}

	if f.Advice != nil {
		em.Advice = *f.Advice
	}
	if f.See != nil {
		em.See = *f.See
	}

	return nil
}

func (e ErrorMessage) String() string {
	lines := []string{e.Reason}
	if e.Advice != "" {
		lines = append(lines, e.Advice)
	}
	if e.Cause != nil {
		lines = append(lines, fmt.Sprint(" caused by:", e.Cause.Error()))
	}
	return strings.Join(lines, "\n")
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}
