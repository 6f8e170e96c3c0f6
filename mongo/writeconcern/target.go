// Copyright (C) MongoDB, Inc. 2026-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package writeconcern

import (
	"fmt"
	"math"
	"strconv"

	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

type targetKind uint8

const (
	targetNone targetKind = iota
	targetCount
	targetMode
)

// majorityMode is the name of the built-in majority acknowledgement mode.
const majorityMode = "majority"

var majority = Target{kind: targetMode, mode: majorityMode}

// Target is the `w` field of a write concern: either the number of mongod
// instances that must acknowledge a write, or the name of an acknowledgement
// mode such as "majority" or a custom tag set defined by the replica set.
//
// Targets are immutable and comparable. A Count target is never equal to a
// Mode target, even if the mode name spells the same number. The zero Target
// means that no `w` is specified and is never returned by the constructors.
type Target struct {
	kind  targetKind
	count int32
	mode  string
}

// NewCount returns a Target that requests acknowledgement from n mongod
// instances. A count of 0 requests no acknowledgement.
func NewCount(n int) (Target, error) {
	if n < 0 {
		return Target{}, newValidationError("w", n, ErrNegativeW)
	}
	if n > math.MaxInt32 {
		return Target{}, newValidationError("w", n, ErrWOverflow)
	}
	return Target{kind: targetCount, count: int32(n)}, nil
}

// NewMode returns a Target that requests acknowledgement according to the
// named mode.
func NewMode(name string) (Target, error) {
	if name == "" {
		return Target{}, newValidationError("w", strconv.Quote(name), ErrEmptyWMode)
	}
	return Target{kind: targetMode, mode: name}, nil
}

// MajorityTarget returns the "majority" mode Target.
func MajorityTarget() Target {
	return majority
}

// ParseTarget converts the textual form of a `w` value, as found in
// connection strings, into a Target. Strings that parse as a non-negative
// int32 become counts; every other non-empty string becomes a mode.
func ParseTarget(s string) (Target, error) {
	if n, err := strconv.ParseInt(s, 10, 32); err == nil && n >= 0 {
		return Target{kind: targetCount, count: int32(n)}, nil
	}
	return NewMode(s)
}

// IsZero reports whether t is the zero Target.
func (t Target) IsZero() bool {
	return t.kind == targetNone
}

// Count returns the acknowledgement count and true if t is a count.
func (t Target) Count() (int, bool) {
	if t.kind != targetCount {
		return 0, false
	}
	return int(t.count), true
}

// Mode returns the acknowledgement mode name and true if t is a mode.
func (t Target) Mode() (string, bool) {
	if t.kind != targetMode {
		return "", false
	}
	return t.mode, true
}

// Equal reports whether t and other are the same kind with the same value.
func (t Target) Equal(other Target) bool {
	return t == other
}

// String renders counts bare and modes quoted, e.g. 2 or "majority".
func (t Target) String() string {
	switch t.kind {
	case targetNone:
		return ""
	case targetCount:
		return strconv.Itoa(int(t.count))
	case targetMode:
		return strconv.Quote(t.mode)
	default:
		panic(fmt.Sprintf("writeconcern: unknown target kind %d", t.kind))
	}
}

// appendElement appends t to dst as a BSON element named key. Counts are
// encoded as int32 and modes as strings.
func (t Target) appendElement(dst []byte, key string) []byte {
	switch t.kind {
	case targetNone:
		return dst
	case targetCount:
		return bsoncore.AppendInt32Element(dst, key, t.count)
	case targetMode:
		return bsoncore.AppendStringElement(dst, key, t.mode)
	default:
		panic(fmt.Sprintf("writeconcern: unknown target kind %d", t.kind))
	}
}
