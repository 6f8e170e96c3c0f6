// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package writeconcern defines write concerns for MongoDB operations.
//
// A WriteConcern is immutable once constructed. Derived write concerns are
// created with WriteConcern.With, which never modifies its receiver.
//
// For more information about MongoDB write concerns, see
// https://www.mongodb.com/docs/manual/reference/write-concern/
package writeconcern

import (
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/ikmak/mongo-writeconcern/mongo/optional"
)

// flag is an optional boolean stored without a pointer so that WriteConcern
// stays comparable.
type flag uint8

const (
	flagUnset flag = iota
	flagFalse
	flagTrue
)

func flagOf(b, present bool) flag {
	switch {
	case !present:
		return flagUnset
	case b:
		return flagTrue
	default:
		return flagFalse
	}
}

func (f flag) get() (bool, bool) {
	return f == flagTrue, f != flagUnset
}

// WriteConcern describes the level of acknowledgement requested from MongoDB
// for write operations to a standalone mongod, to replica sets or to sharded
// clusters.
//
// The zero value, like Acknowledged(), specifies no fields and defers to the
// server's default write concern.
type WriteConcern struct {
	w        Target
	wTimeout time.Duration // 0 means not specified
	journal  flag
	fsync    flag
}

var (
	acknowledged   = &WriteConcern{}
	unacknowledged = &WriteConcern{w: Target{kind: targetCount, count: 0}}
	w1             = &WriteConcern{w: Target{kind: targetCount, count: 1}}
	w2             = &WriteConcern{w: Target{kind: targetCount, count: 2}}
	w3             = &WriteConcern{w: Target{kind: targetCount, count: 3}}
	wMajority      = &WriteConcern{w: majority}
)

// Acknowledged returns a WriteConcern that specifies no fields, so the
// server's default write concern applies. The same instance is returned on
// every call.
func Acknowledged() *WriteConcern { return acknowledged }

// Unacknowledged returns a WriteConcern that requests no acknowledgment of
// write operations. The same instance is returned on every call.
//
// For more information about write concern "w: 0", see
// https://www.mongodb.com/docs/manual/reference/write-concern/#mongodb-writeconcern-writeconcern.-number-
func Unacknowledged() *WriteConcern { return unacknowledged }

// W1 returns a WriteConcern that requests acknowledgment that write
// operations propagated to the standalone mongod or the primary in a replica
// set. The same instance is returned on every call.
func W1() *WriteConcern { return w1 }

// W2 returns a WriteConcern that requests acknowledgment from two mongod
// instances. The same instance is returned on every call.
func W2() *WriteConcern { return w2 }

// W3 returns a WriteConcern that requests acknowledgment from three mongod
// instances. The same instance is returned on every call.
func W3() *WriteConcern { return w3 }

// Majority returns a WriteConcern that requests acknowledgment that write
// operations propagated to the majority of data-bearing voting members. The
// same instance is returned on every call.
//
// For more information about write concern "w: majority", see
// https://www.mongodb.com/docs/manual/reference/write-concern/#mongodb-writeconcern-writeconcern.-majority-
func Majority() *WriteConcern { return wMajority }

type wSource uint8

const (
	wSourceNone wSource = iota
	wSourceCount
	wSourceMode
	wSourceTarget
)

// settings collects the raw, unvalidated values supplied to New.
type settings struct {
	wSource  wSource
	wCount   int
	wMode    string
	wTarget  Target
	wTimeout *time.Duration
	journal  *bool
	fsync    *bool
}

// Option is an option to provide when creating a WriteConcern.
type Option func(*settings)

// W requests acknowledgement that write operations propagate to the
// specified number of mongod instances.
func W(w int) Option {
	return func(s *settings) {
		s.wSource = wSourceCount
		s.wCount = w
	}
}

// WMajority requests acknowledgement that write operations propagate to the
// majority of mongod instances.
func WMajority() Option {
	return WTarget(majority)
}

// WTagSet requests acknowledgement that write operations propagate to the
// mongod instances matching the named mode or tag set.
func WTagSet(tag string) Option {
	return func(s *settings) {
		s.wSource = wSourceMode
		s.wMode = tag
	}
}

// WTarget sets the `w` field from a Target. The zero Target leaves `w`
// unspecified.
func WTarget(t Target) Option {
	return func(s *settings) {
		s.wSource = wSourceTarget
		s.wTarget = t
	}
}

// WTimeout specifies a time limit for the write concern. It must be positive.
func WTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.wTimeout = &d
	}
}

// J requests acknowledgement from MongoDB that write operations are written
// to the journal.
func J(j bool) Option {
	return func(s *settings) {
		s.journal = &j
	}
}

// FSync requests that MongoDB flush data to disk before acknowledging write
// operations.
func FSync(fsync bool) Option {
	return func(s *settings) {
		s.fsync = &fsync
	}
}

// New constructs a new WriteConcern. It returns a *ValidationError if a
// numeric `w` is negative, a named `w` is empty, or the wtimeout is not
// positive. When several `w` options are given, the last one wins.
func New(opts ...Option) (*WriteConcern, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	var w Target
	switch s.wSource {
	case wSourceNone:
	case wSourceCount:
		t, err := NewCount(s.wCount)
		if err != nil {
			return nil, err
		}
		w = t
	case wSourceMode:
		t, err := NewMode(s.wMode)
		if err != nil {
			return nil, err
		}
		w = t
	case wSourceTarget:
		w = s.wTarget
	}

	var wTimeout time.Duration
	if s.wTimeout != nil {
		wTimeout = *s.wTimeout
	}

	return newWriteConcern(w, wTimeout, s.wTimeout != nil, deref(s.journal), deref(s.fsync))
}

// MustNew is like New but panics if the options are invalid. It is intended
// for package-level variables.
func MustNew(opts ...Option) *WriteConcern {
	wc, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return wc
}

func deref(b *bool) flag {
	if b == nil {
		return flagUnset
	}
	return flagOf(*b, true)
}

// newWriteConcern is the single validating constructor every path goes
// through. w is already valid since Targets can only be built validated.
func newWriteConcern(w Target, wTimeout time.Duration, hasWTimeout bool, journal, fsync flag) (*WriteConcern, error) {
	if hasWTimeout && wTimeout <= 0 {
		return nil, newValidationError("wtimeout", wTimeout, ErrNonPositiveWTimeout)
	}
	return &WriteConcern{
		w:        w,
		wTimeout: wTimeout,
		journal:  journal,
		fsync:    fsync,
	}, nil
}

// W returns the `w` field and whether it is specified.
func (wc *WriteConcern) W() (Target, bool) {
	if wc == nil {
		return Target{}, false
	}
	return wc.w, !wc.w.IsZero()
}

// WTimeout returns the `wtimeout` field and whether it is specified.
func (wc *WriteConcern) WTimeout() (time.Duration, bool) {
	if wc == nil {
		return 0, false
	}
	return wc.wTimeout, wc.wTimeout != 0
}

// Journal returns the `j` field and whether it is specified.
func (wc *WriteConcern) Journal() (bool, bool) {
	if wc == nil {
		return false, false
	}
	return wc.journal.get()
}

// FSync returns the `fsync` field and whether it is specified.
func (wc *WriteConcern) FSync() (bool, bool) {
	if wc == nil {
		return false, false
	}
	return wc.fsync.get()
}

// Acknowledged indicates whether or not a write with the given write concern
// will be acknowledged. Only {w: 0} with no other field set is
// unacknowledged. A nil WriteConcern is acknowledged.
func (wc *WriteConcern) Acknowledged() bool {
	if wc == nil {
		return true
	}
	return *wc != *unacknowledged
}

// IsEmpty reports whether no field of the write concern is specified.
func (wc *WriteConcern) IsEmpty() bool {
	return wc == nil || *wc == *acknowledged
}

// Equal reports whether wc and other specify the same fields with the same
// values. A nil WriteConcern is only equal to another nil WriteConcern.
func (wc *WriteConcern) Equal(other *WriteConcern) bool {
	if wc == nil || other == nil {
		return wc == other
	}
	return *wc == *other
}

// Hash returns a hash of the write concern's fields. Equal write concerns
// have equal hashes.
func (wc *WriteConcern) Hash() uint64 {
	return xxhash.Sum64(wc.Document())
}

// String returns a human readable form of the write concern, e.g.
// { w : "majority", wtimeout : 100ms, journal : true }. The form is meant
// for logs and is not parseable.
func (wc *WriteConcern) String() string {
	if wc.IsEmpty() {
		return "{ }"
	}

	parts := make([]string, 0, 4)
	if w, ok := wc.W(); ok {
		parts = append(parts, "w : "+w.String())
	}
	if d, ok := wc.WTimeout(); ok {
		parts = append(parts, "wtimeout : "+d.String())
	}
	if f, ok := wc.FSync(); ok {
		parts = append(parts, "fsync : "+strconv.FormatBool(f))
	}
	if j, ok := wc.Journal(); ok {
		parts = append(parts, "journal : "+strconv.FormatBool(j))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Overrides selects the fields WriteConcern.With replaces. An unset field
// keeps its current value, a cleared field is removed and a set field is
// replaced. Setting W to the zero Target is the same as clearing it.
type Overrides struct {
	W        optional.Value[Target]
	WTimeout optional.Value[time.Duration]
	Journal  optional.Value[bool]
	FSync    optional.Value[bool]
}

// With returns a WriteConcern with the overrides applied. If no override
// changes the effective value of a field, wc itself is returned, so callers
// can compare pointers to learn whether anything changed. The result is
// validated like New. A nil wc behaves as Acknowledged().
func (wc *WriteConcern) With(o Overrides) (*WriteConcern, error) {
	if wc == nil {
		wc = acknowledged
	}

	w, _ := o.W.Apply(wc.W())
	wTimeout, hasWTimeout := o.WTimeout.Apply(wc.WTimeout())
	journal := flagOf(o.Journal.Apply(wc.Journal()))
	fsync := flagOf(o.FSync.Apply(wc.FSync()))

	if w == wc.w && hasWTimeout == (wc.wTimeout != 0) && wTimeout == wc.wTimeout &&
		journal == wc.journal && fsync == wc.fsync {
		return wc, nil
	}

	return newWriteConcern(w, wTimeout, hasWTimeout, journal, fsync)
}

// AckWrite returns true if a write concern represents an acknowledged write.
func AckWrite(wc *WriteConcern) bool {
	return wc == nil || wc.Acknowledged()
}
