// Package args adapts parser functions to flag.Value.
//
//	timezone := args.Parser(time.LoadLocation)
//	flag.Var(timezone, "timezone", "IANA timezone")
package args

import "flag"

type Adapter[T interface{ String() string }] struct {
	value  T
	parser func(string) (T, error)
	isSet  bool
}

var _ flag.Value = &Adapter[interface{ String() string }]{}

func (a *Adapter[T]) String() string {
	if a == nil || !a.isSet {
		return ""
	}
	return a.value.String()
}

// Set parses s. When parsing fails, the former value is kept.
func (a *Adapter[T]) Set(s string) error {
	v, err := a.parser(s)
	if err != nil {
		return err
	}
	a.isSet = true
	a.value = v
	return nil
}

// Value returns the parsed value, or zero value of T when not set.
func (a *Adapter[T]) Value() T {
	return a.value
}

func (a *Adapter[T]) IsSet() bool {
	return a.isSet
}

func Parser[T interface{ String() string }](parser func(string) (T, error)) *Adapter[T] {
	return &Adapter[T]{parser: parser}
}
