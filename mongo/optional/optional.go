// Copyright (C) MongoDB, Inc. 2026-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package optional provides a three-state value used to describe selective
// overrides of immutable settings.
//
// A Value is in exactly one of three states:
//
//   - unset: the caller did not supply the field, so the current value is kept
//   - cleared: the caller supplied the field with no value, so it is removed
//   - set: the caller supplied a replacement value
//
// The zero Value is unset.
package optional

type state uint8

const (
	unset state = iota
	cleared
	set
)

// Value is a three-state optional value. See the package documentation.
type Value[T any] struct {
	state state
	val   T
}

// Some returns a Value holding v.
func Some[T any](v T) Value[T] {
	return Value[T]{state: set, val: v}
}

// Clear returns a Value that removes the field it is applied to.
func Clear[T any]() Value[T] {
	return Value[T]{state: cleared}
}

// Unset returns a Value that leaves the field it is applied to unchanged. It
// is equivalent to the zero Value.
func Unset[T any]() Value[T] {
	return Value[T]{}
}

// IsUnset reports whether v was not supplied.
func (v Value[T]) IsUnset() bool { return v.state == unset }

// IsCleared reports whether v was supplied without a value.
func (v Value[T]) IsCleared() bool { return v.state == cleared }

// IsSet reports whether v holds a value.
func (v Value[T]) IsSet() bool { return v.state == set }

// Get returns the held value and whether there is one.
func (v Value[T]) Get() (T, bool) {
	return v.val, v.state == set
}

// Apply merges v onto a current field value, where present reports whether
// the field currently has a value. It returns the resulting value and
// presence.
func (v Value[T]) Apply(current T, present bool) (T, bool) {
	switch v.state {
	case unset:
		return current, present
	case cleared:
		var zero T
		return zero, false
	case set:
		return v.val, true
	default:
		panic("optional: invalid state")
	}
}

// String returns a short description of the state, for diagnostics.
func (v Value[T]) String() string {
	switch v.state {
	case unset:
		return "unset"
	case cleared:
		return "cleared"
	default:
		return "set"
	}
}
