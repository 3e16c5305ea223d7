package mocks

import "errors"

// CallLog records arguments of calls to a mocked method.
type CallLog[T any] []T

func (c CallLog[T]) Times() int {
	return len(c)
}

var errNotImplemented = errors.New("[MOCK] it should not be called")
