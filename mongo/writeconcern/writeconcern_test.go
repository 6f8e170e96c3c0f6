// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package writeconcern_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikmak/mongo-writeconcern/mongo/optional"
	"github.com/ikmak/mongo-writeconcern/mongo/writeconcern"
)

func count(t *testing.T, n int) writeconcern.Target {
	t.Helper()

	target, err := writeconcern.NewCount(n)
	require.NoError(t, err)
	return target
}

func TestWriteConcern(t *testing.T) {
	testCases := []struct {
		name             string
		wc               *writeconcern.WriteConcern
		wantAcknowledged bool
		wantString       string
	}{
		{
			name:             "Acknowledged",
			wc:               writeconcern.Acknowledged(),
			wantAcknowledged: true,
			wantString:       "{ }",
		},
		{
			name:             "Unacknowledged",
			wc:               writeconcern.Unacknowledged(),
			wantAcknowledged: false,
			wantString:       "{ w : 0 }",
		},
		{
			name:             "W1",
			wc:               writeconcern.W1(),
			wantAcknowledged: true,
			wantString:       "{ w : 1 }",
		},
		{
			name:             "W3",
			wc:               writeconcern.W3(),
			wantAcknowledged: true,
			wantString:       "{ w : 3 }",
		},
		{
			name:             "Majority",
			wc:               writeconcern.Majority(),
			wantAcknowledged: true,
			wantString:       `{ w : "majority" }`,
		},
		{
			name:             "{w: 0, j: true}",
			wc:               writeconcern.MustNew(writeconcern.W(0), writeconcern.J(true)),
			wantAcknowledged: true,
			wantString:       "{ w : 0, journal : true }",
		},
		{
			name:             "{w: 0, j: false}",
			wc:               writeconcern.MustNew(writeconcern.W(0), writeconcern.J(false)),
			wantAcknowledged: true,
			wantString:       "{ w : 0, journal : false }",
		},
		{
			name:             "{w: 0, wtimeout: 1s}",
			wc:               writeconcern.MustNew(writeconcern.W(0), writeconcern.WTimeout(time.Second)),
			wantAcknowledged: true,
			wantString:       "{ w : 0, wtimeout : 1s }",
		},
		{
			name:             "{w: 0, fsync: false}",
			wc:               writeconcern.MustNew(writeconcern.W(0), writeconcern.FSync(false)),
			wantAcknowledged: true,
			wantString:       "{ w : 0, fsync : false }",
		},
		{
			name:             "{w: custom}",
			wc:               writeconcern.MustNew(writeconcern.WTagSet("custom")),
			wantAcknowledged: true,
			wantString:       `{ w : "custom" }`,
		},
		{
			name: "all fields",
			wc: writeconcern.MustNew(
				writeconcern.WMajority(),
				writeconcern.WTimeout(100*time.Millisecond),
				writeconcern.J(true),
				writeconcern.FSync(true)),
			wantAcknowledged: true,
			wantString:       `{ w : "majority", wtimeout : 100ms, fsync : true, journal : true }`,
		},
		{
			name:             "nil",
			wc:               nil,
			wantAcknowledged: true,
			wantString:       "{ }",
		},
	}

	for _, tc := range testCases {
		tc := tc // Capture range variable.

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t,
				tc.wantAcknowledged,
				tc.wc.Acknowledged(),
				"expected and actual Acknowledged value are different")
			assert.Equal(t,
				tc.wantAcknowledged,
				writeconcern.AckWrite(tc.wc),
				"expected and actual AckWrite value are different")
			assert.Equal(t, tc.wantString, tc.wc.String())
		})
	}
}

func TestNewValidation(t *testing.T) {
	testCases := []struct {
		name      string
		opts      []writeconcern.Option
		wantField string
		wantErr   error
	}{
		{"negative w", []writeconcern.Option{writeconcern.W(-1)}, "w", writeconcern.ErrNegativeW},
		{"empty tag", []writeconcern.Option{writeconcern.WTagSet("")}, "w", writeconcern.ErrEmptyWMode},
		{"zero wtimeout", []writeconcern.Option{writeconcern.WTimeout(0)}, "wtimeout", writeconcern.ErrNonPositiveWTimeout},
		{"negative wtimeout", []writeconcern.Option{writeconcern.WTimeout(-time.Second)}, "wtimeout", writeconcern.ErrNonPositiveWTimeout},
		{
			"w checked before wtimeout",
			[]writeconcern.Option{writeconcern.WTimeout(-1), writeconcern.W(-1)},
			"w",
			writeconcern.ErrNegativeW,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			wc, err := writeconcern.New(tc.opts...)
			require.Error(t, err)
			assert.Nil(t, wc)
			assert.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)

			var verr *writeconcern.ValidationError
			require.True(t, errors.As(err, &verr), "expected a *ValidationError, got %T", err)
			assert.Equal(t, tc.wantField, verr.Field)
		})
	}

	t.Run("MustNew panics", func(t *testing.T) {
		assert.Panics(t, func() { writeconcern.MustNew(writeconcern.W(-3)) })
	})
}

func TestNewLastWWins(t *testing.T) {
	wc := writeconcern.MustNew(writeconcern.W(-1), writeconcern.WTagSet("dc1"))
	w, ok := wc.W()
	require.True(t, ok)
	mode, ok := w.Mode()
	require.True(t, ok)
	assert.Equal(t, "dc1", mode)

	wc = writeconcern.MustNew(writeconcern.WMajority(), writeconcern.WTarget(writeconcern.Target{}))
	_, ok = wc.W()
	assert.False(t, ok, "zero Target should leave w unspecified")
	assert.Same(t, writeconcern.Acknowledged(), writeconcern.Acknowledged())
	assert.True(t, wc.Equal(writeconcern.Acknowledged()))
}

func TestAccessors(t *testing.T) {
	wc := writeconcern.MustNew(writeconcern.W(2), writeconcern.WTimeout(time.Second), writeconcern.FSync(false))

	w, ok := wc.W()
	require.True(t, ok)
	assert.Equal(t, count(t, 2), w)

	d, ok := wc.WTimeout()
	assert.True(t, ok)
	assert.Equal(t, time.Second, d)

	fsync, ok := wc.FSync()
	assert.True(t, ok)
	assert.False(t, fsync)

	_, ok = wc.Journal()
	assert.False(t, ok)

	var nilWC *writeconcern.WriteConcern
	_, ok = nilWC.W()
	assert.False(t, ok)
	_, ok = nilWC.WTimeout()
	assert.False(t, ok)
	assert.True(t, nilWC.IsEmpty())
}

func TestEqualAndHash(t *testing.T) {
	byCount := writeconcern.MustNew(writeconcern.W(2), writeconcern.J(true))
	byTarget := writeconcern.MustNew(writeconcern.WTarget(count(t, 2)), writeconcern.J(true))
	byWith, err := writeconcern.Acknowledged().With(writeconcern.Overrides{
		W:       optional.Some(count(t, 2)),
		Journal: optional.Some(true),
	})
	require.NoError(t, err)

	for _, other := range []*writeconcern.WriteConcern{byTarget, byWith} {
		assert.True(t, byCount.Equal(other))
		assert.Equal(t, byCount.Hash(), other.Hash())
	}

	assert.True(t, writeconcern.MustNew(writeconcern.W(1)).Equal(writeconcern.W1()))
	assert.True(t, writeconcern.MustNew(writeconcern.WTagSet("majority")).Equal(writeconcern.Majority()))

	testCases := []struct {
		name string
		a, b *writeconcern.WriteConcern
	}{
		{"count vs mode", writeconcern.W1(), writeconcern.MustNew(writeconcern.WTagSet("1"))},
		{"journal false vs unset", writeconcern.MustNew(writeconcern.J(false)), writeconcern.Acknowledged()},
		{"fsync vs journal", writeconcern.MustNew(writeconcern.J(true)), writeconcern.MustNew(writeconcern.FSync(true))},
		{"wtimeout", writeconcern.MustNew(writeconcern.WTimeout(time.Second)), writeconcern.MustNew(writeconcern.WTimeout(time.Minute))},
		{"nil vs acknowledged", nil, writeconcern.Acknowledged()},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.False(t, tc.a.Equal(tc.b))
			assert.False(t, tc.b.Equal(tc.a))
			if tc.a != nil {
				assert.NotEqual(t, tc.a.Hash(), tc.b.Hash())
			}
		})
	}

	var nilWC *writeconcern.WriteConcern
	assert.True(t, nilWC.Equal(nil))
}

func TestWith(t *testing.T) {
	t.Run("no overrides returns receiver", func(t *testing.T) {
		wc := writeconcern.MustNew(writeconcern.W(2), writeconcern.WTimeout(time.Second))

		got, err := wc.With(writeconcern.Overrides{})
		require.NoError(t, err)
		assert.Same(t, wc, got)
	})

	t.Run("overrides equal to current values return receiver", func(t *testing.T) {
		wc := writeconcern.MustNew(writeconcern.W(2), writeconcern.WTimeout(time.Second), writeconcern.J(false))

		got, err := wc.With(writeconcern.Overrides{
			W:        optional.Some(count(t, 2)),
			WTimeout: optional.Some(time.Second),
			Journal:  optional.Some(false),
			FSync:    optional.Clear[bool](),
		})
		require.NoError(t, err)
		assert.Same(t, wc, got)
	})

	t.Run("preset stays a singleton", func(t *testing.T) {
		got, err := writeconcern.Majority().With(writeconcern.Overrides{W: optional.Some(writeconcern.MajorityTarget())})
		require.NoError(t, err)
		assert.Same(t, writeconcern.Majority(), got)
	})

	t.Run("w on Acknowledged", func(t *testing.T) {
		got, err := writeconcern.Acknowledged().With(writeconcern.Overrides{W: optional.Some(count(t, 5))})
		require.NoError(t, err)
		assert.True(t, got.Equal(writeconcern.MustNew(writeconcern.W(5))))
		assert.False(t, got.Equal(writeconcern.Acknowledged()))
		assert.True(t, writeconcern.Acknowledged().IsEmpty(), "receiver must not change")
	})

	t.Run("clear removes fields", func(t *testing.T) {
		wc := writeconcern.MustNew(writeconcern.WMajority(), writeconcern.WTimeout(time.Second), writeconcern.J(true), writeconcern.FSync(true))

		got, err := wc.With(writeconcern.Overrides{
			W:        optional.Clear[writeconcern.Target](),
			WTimeout: optional.Clear[time.Duration](),
			Journal:  optional.Clear[bool](),
			FSync:    optional.Clear[bool](),
		})
		require.NoError(t, err)
		assert.True(t, got.IsEmpty())
		assert.NotSame(t, writeconcern.Acknowledged(), got)
		assert.Equal(t, `{ w : "majority", wtimeout : 1s, fsync : true, journal : true }`, wc.String())
	})

	t.Run("unacknowledged becomes acknowledged", func(t *testing.T) {
		got, err := writeconcern.Unacknowledged().With(writeconcern.Overrides{Journal: optional.Some(true)})
		require.NoError(t, err)
		assert.True(t, got.Acknowledged())
		assert.False(t, writeconcern.Unacknowledged().Acknowledged())
	})

	t.Run("invalid wtimeout", func(t *testing.T) {
		got, err := writeconcern.W1().With(writeconcern.Overrides{WTimeout: optional.Some(time.Duration(0))})
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, writeconcern.ErrNonPositiveWTimeout))
	})

	t.Run("nil receiver", func(t *testing.T) {
		var wc *writeconcern.WriteConcern

		got, err := wc.With(writeconcern.Overrides{})
		require.NoError(t, err)
		assert.Same(t, writeconcern.Acknowledged(), got)
	})
}
