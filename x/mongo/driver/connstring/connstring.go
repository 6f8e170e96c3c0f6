// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package connstring parses MongoDB connection strings and extracts the
// write concern options they carry.
package connstring

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ikmak/mongo-writeconcern/mongo/writeconcern"
)

const (
	// SchemeMongoDB is the scheme for a MongoDB connection string.
	SchemeMongoDB = "mongodb"

	// SchemeMongoDBSRV is the scheme for a MongoDB SRV connection string.
	SchemeMongoDBSRV = "mongodb+srv"
)

// ConnString represents a connection string to MongoDB. Only the parts that
// affect the write concern are interpreted; other options are kept verbatim
// in UnknownOptions.
type ConnString struct {
	Original string
	Scheme   string
	Hosts    []string
	Database string

	WNumber     int
	WNumberSet  bool
	WString     string
	WTimeout    time.Duration
	WTimeoutSet bool
	J           bool
	JSet        bool
	FSync       bool
	FSyncSet    bool

	UnknownOptions map[string][]string
}

// Parse parses the provided uri and returns a connection string object.
func Parse(s string) (*ConnString, error) {
	p := parser{cs: &ConnString{Original: s, UnknownOptions: make(map[string][]string)}}
	if err := p.parse(s); err != nil {
		return nil, errors.Wrap(err, "error parsing uri")
	}
	return p.cs, nil
}

// HasWriteConcern reports whether any write concern option was present.
func (cs *ConnString) HasWriteConcern() bool {
	return cs.WNumberSet || cs.WString != "" || cs.WTimeoutSet || cs.JSet || cs.FSyncSet
}

// WriteConcern builds the write concern described by the connection string.
// It returns nil when the connection string has no write concern option, in
// which case the server default applies.
func (cs *ConnString) WriteConcern() (*writeconcern.WriteConcern, error) {
	if !cs.HasWriteConcern() {
		return nil, nil
	}

	var opts []writeconcern.Option
	switch {
	case cs.WNumberSet:
		opts = append(opts, writeconcern.W(cs.WNumber))
	case cs.WString != "":
		opts = append(opts, writeconcern.WTagSet(cs.WString))
	}
	if cs.WTimeoutSet {
		opts = append(opts, writeconcern.WTimeout(cs.WTimeout))
	}
	if cs.JSet {
		opts = append(opts, writeconcern.J(cs.J))
	}
	if cs.FSyncSet {
		opts = append(opts, writeconcern.FSync(cs.FSync))
	}

	wc, err := writeconcern.New(opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid write concern in %q", cs.Original)
	}
	return wc, nil
}

type parser struct {
	cs   *ConnString
	seen map[string]struct{}
}

func (p *parser) parse(original string) error {
	var uri string
	switch {
	case strings.HasPrefix(original, SchemeMongoDBSRV+"://"):
		p.cs.Scheme = SchemeMongoDBSRV
		uri = original[len(SchemeMongoDBSRV)+3:]
	case strings.HasPrefix(original, SchemeMongoDB+"://"):
		p.cs.Scheme = SchemeMongoDB
		uri = original[len(SchemeMongoDB)+3:]
	default:
		return errors.New(`scheme must be "mongodb" or "mongodb+srv"`)
	}

	if idx := strings.LastIndex(uri, "@"); idx != -1 {
		uri = uri[idx+1:]
	}

	hosts := uri
	rest := ""
	if idx := strings.IndexAny(uri, "/?"); idx != -1 {
		hosts = uri[:idx]
		rest = uri[idx:]
	}
	if hosts == "" {
		return errors.New("must have at least 1 host")
	}
	for _, host := range strings.Split(hosts, ",") {
		if host == "" {
			return errors.Errorf("empty host in %q", hosts)
		}
		p.cs.Hosts = append(p.cs.Hosts, host)
	}
	if p.cs.Scheme == SchemeMongoDBSRV && len(p.cs.Hosts) != 1 {
		return errors.New("URI with SRV must include exactly one hostname")
	}

	rest = strings.TrimPrefix(rest, "/")
	query := ""
	if idx := strings.Index(rest, "?"); idx != -1 {
		query = rest[idx+1:]
		rest = rest[:idx]
	}
	if rest != "" {
		db, err := url.PathUnescape(rest)
		if err != nil {
			return errors.Wrapf(err, "invalid database %q", rest)
		}
		p.cs.Database = db
	}

	if query == "" {
		return nil
	}
	for _, pair := range strings.FieldsFunc(query, func(r rune) bool { return r == '&' || r == ';' }) {
		if err := p.addOption(pair); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) addOption(pair string) error {
	kv := strings.SplitN(pair, "=", 2)
	if len(kv) != 2 || kv[0] == "" {
		return errors.Errorf("invalid option %q", pair)
	}

	key, err := url.QueryUnescape(kv[0])
	if err != nil {
		return errors.Wrapf(err, "invalid option key %q", kv[0])
	}
	value, err := url.QueryUnescape(kv[1])
	if err != nil {
		return errors.Wrapf(err, "invalid option value %q", kv[1])
	}

	lowerKey := strings.ToLower(key)
	switch lowerKey {
	case "w", "wtimeoutms", "wtimeout", "journal", "fsync":
		if err := p.markSeen(lowerKey); err != nil {
			return err
		}
	}

	switch lowerKey {
	case "w":
		target, err := writeconcern.ParseTarget(value)
		if err != nil {
			return errors.Wrap(err, "invalid value for w")
		}
		if n, ok := target.Count(); ok {
			p.cs.WNumber = n
			p.cs.WNumberSet = true
		} else {
			p.cs.WString, _ = target.Mode()
		}
	case "wtimeoutms", "wtimeout":
		ms, err := strconv.Atoi(value)
		if err != nil || ms < 0 {
			return errors.Errorf("invalid value for %s: %s", key, value)
		}
		// 0 is the documented way to disable the timeout.
		if ms > 0 {
			p.cs.WTimeout = time.Duration(ms) * time.Millisecond
			p.cs.WTimeoutSet = true
		}
	case "journal":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		p.cs.J = b
		p.cs.JSet = true
	case "fsync":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		p.cs.FSync = b
		p.cs.FSyncSet = true
	default:
		p.cs.UnknownOptions[lowerKey] = append(p.cs.UnknownOptions[lowerKey], value)
	}
	return nil
}

// markSeen rejects a second occurrence of a write concern option, counting
// wtimeoutMS and its legacy spelling as the same option.
func (p *parser) markSeen(key string) error {
	if key == "wtimeout" {
		key = "wtimeoutms"
	}
	if p.seen == nil {
		p.seen = make(map[string]struct{})
	}
	if _, ok := p.seen[key]; ok {
		return errors.Errorf("write concern option %s specified more than once", key)
	}
	p.seen[key] = struct{}{}
	return nil
}

func parseBool(key, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, errors.Errorf("invalid value for %s: %s", key, value)
	}
}
