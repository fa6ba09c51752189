package common

import (
	"fmt"
	"strings"
)

type Optional[T any] struct {
	Value     T
	IsPresent bool
}

func (p Optional[T]) String() string {
	if !p.IsPresent {
		return "[-]"
	}
	return fmt.Sprintf("[%v]", p.Value)
}

func NewOptional[T any](value T, isPresent bool) Optional[T] {
	return Optional[T]{Value: value, IsPresent: isPresent}
}

func None[T any]() Optional[T] {
	var value T
	return Optional[T]{Value: value, IsPresent: false}
}

// Email is stored and compared exactly as entered, only surrounding whitespace is dropped.
type Email string

func NewEmail(rawEmail string) Email {
	return Email(strings.TrimSpace(rawEmail))
}
