// Copyright (C) MongoDB, Inc. 2026-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package writeconcern

import (
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Document returns the write concern as a BSON document suitable for the
// `writeConcern` field of a write command. Only specified fields are
// written, in the order w, wtimeout, fsync, j. The wtimeout is written as a
// double number of milliseconds.
func (wc *WriteConcern) Document() bsoncore.Document {
	var elems []byte
	if wc != nil {
		elems = wc.w.appendElement(elems, "w")
		if wc.wTimeout != 0 {
			elems = bsoncore.AppendDoubleElement(elems, "wtimeout", float64(wc.wTimeout)/float64(time.Millisecond))
		}
		if fsync, ok := wc.fsync.get(); ok {
			elems = bsoncore.AppendBooleanElement(elems, "fsync", fsync)
		}
		if j, ok := wc.journal.get(); ok {
			elems = bsoncore.AppendBooleanElement(elems, "j", j)
		}
	}
	return bsoncore.BuildDocument(nil, elems)
}

// MarshalBSON implements bson.Marshaler so a WriteConcern can be embedded
// directly in a command built with the bson package.
func (wc *WriteConcern) MarshalBSON() ([]byte, error) {
	return wc.Document(), nil
}

// FromDocument decodes a write concern document such as the one produced by
// Document or returned by the server. Numeric fields may use any BSON number
// type. A wtimeout of 0 is treated as unspecified. Unknown keys and values of
// the wrong type are errors, and the decoded values are validated like New.
func FromDocument(doc bsoncore.Document) (*WriteConcern, error) {
	elems, err := doc.Elements()
	if err != nil {
		return nil, fmt.Errorf("invalid write concern document: %w", err)
	}

	var opts []Option
	for _, elem := range elems {
		key := elem.Key()
		val := elem.Value()

		switch key {
		case "w":
			if s, ok := val.StringValueOK(); ok {
				opts = append(opts, WTagSet(s))
				break
			}
			n, err := integerValue(key, val)
			if err != nil {
				return nil, err
			}
			opts = append(opts, W(n))
		case "wtimeout":
			ms, err := numberValue(key, val)
			if err != nil {
				return nil, err
			}
			if ms != 0 {
				opts = append(opts, WTimeout(time.Duration(ms*float64(time.Millisecond))))
			}
		case "j", "fsync":
			b, ok := val.BooleanOK()
			if !ok {
				return nil, fmt.Errorf("write concern %q must be a boolean, got %s", key, val.Type)
			}
			if key == "j" {
				opts = append(opts, J(b))
			} else {
				opts = append(opts, FSync(b))
			}
		default:
			return nil, fmt.Errorf("unknown write concern field %q", key)
		}
	}

	return New(opts...)
}

func numberValue(key string, val bsoncore.Value) (float64, error) {
	switch val.Type {
	case bsontype.Int32:
		return float64(val.Int32()), nil
	case bsontype.Int64:
		return float64(val.Int64()), nil
	case bsontype.Double:
		return val.Double(), nil
	default:
		return 0, fmt.Errorf("write concern %q must be a number, got %s", key, val.Type)
	}
}

func integerValue(key string, val bsoncore.Value) (int, error) {
	switch val.Type {
	case bsontype.Int32:
		return int(val.Int32()), nil
	case bsontype.Int64:
		return int(val.Int64()), nil
	case bsontype.Double:
		f := val.Double()
		if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
			return 0, fmt.Errorf("write concern %q must be an integer, got %v", key, f)
		}
		return int(f), nil
	default:
		return 0, fmt.Errorf("write concern %q must be a string or a number, got %s", key, val.Type)
	}
}
