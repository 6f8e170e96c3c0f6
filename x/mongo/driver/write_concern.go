// Copyright (C) MongoDB, Inc. 2022-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package driver contains the helpers a command builder uses to attach a
// write concern to an outgoing write command.
package driver

import (
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/ikmak/mongo-writeconcern/mongo/writeconcern"
)

// AppendWriteConcern appends a "writeConcern" element holding wc's wire
// document to dst, which should be the element bytes of a command document
// being built. Nothing is appended when wc is nil or specifies no fields, so
// the server applies its default write concern.
func AppendWriteConcern(dst []byte, wc *writeconcern.WriteConcern) []byte {
	if wc.IsEmpty() {
		return dst
	}
	return bsoncore.AppendDocumentElement(dst, "writeConcern", wc.Document())
}

// AckWrite returns true if a write concern represents an acknowledged write.
func AckWrite(wc *writeconcern.WriteConcern) bool {
	return writeconcern.AckWrite(wc)
}

// AcknowledgedCommand reports whether the write concern attached to cmd
// requests an acknowledged write. A command without a "writeConcern" field
// is acknowledged. A field that cannot be decoded as a write concern is
// reported as unacknowledged so callers do not wait for a reply that may
// never come.
func AcknowledgedCommand(cmd bsoncore.Document) bool {
	val, err := cmd.LookupErr("writeConcern")
	if err != nil {
		// key writeConcern not found --> acknowledged
		return true
	}
	if val.Type != bsontype.EmbeddedDocument {
		return false
	}

	wc, err := writeconcern.FromDocument(val.Document())
	if err != nil {
		return false
	}
	return wc.Acknowledged()
}
