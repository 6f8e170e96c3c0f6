// Copyright (C) MongoDB, Inc. 2026-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ikmak/mongo-writeconcern/mongo/optional"
	"github.com/ikmak/mongo-writeconcern/mongo/writeconcern"
)

const nullTag = "!!null"

// fileConfig is the YAML configuration accepted by -config:
//
//	uri: mongodb://localhost/?w=2
//	writeConcern:
//	  w: majority
//	  wtimeout: 250ms
//	  journal: null
//
// A key missing from writeConcern keeps the value from the URI, a null value
// removes it and any other value replaces it.
type fileConfig struct {
	URI          string    `yaml:"uri"`
	WriteConcern yaml.Node `yaml:"writeConcern"`
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*fileConfig, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse config")
	}
	return &cfg, nil
}

// overrides converts the writeConcern section into write concern overrides.
func (cfg *fileConfig) overrides() (writeconcern.Overrides, error) {
	var o writeconcern.Overrides

	node := &cfg.WriteConcern
	switch {
	case node.Kind == 0 || node.ShortTag() == nullTag:
		return o, nil
	case node.Kind != yaml.MappingNode:
		return o, errors.Errorf("line %d: writeConcern must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		cleared := val.ShortTag() == nullTag

		switch key.Value {
		case "w":
			if cleared {
				o.W = optional.Clear[writeconcern.Target]()
				continue
			}
			t, err := writeconcern.ParseTarget(val.Value)
			if err != nil {
				return o, errors.Wrapf(err, "line %d", val.Line)
			}
			o.W = optional.Some(t)
		case "wtimeout":
			if cleared {
				o.WTimeout = optional.Clear[time.Duration]()
				continue
			}
			d, err := parseWTimeout(val)
			if err != nil {
				return o, err
			}
			o.WTimeout = optional.Some(d)
		case "journal", "j":
			v, err := parseFlag(key.Value, val)
			if err != nil {
				return o, err
			}
			o.Journal = v
		case "fsync":
			v, err := parseFlag(key.Value, val)
			if err != nil {
				return o, err
			}
			o.FSync = v
		default:
			return o, errors.Errorf("line %d: unknown write concern field %q", key.Line, key.Value)
		}
	}
	return o, nil
}

// parseWTimeout accepts a Go duration string or an integer number of
// milliseconds.
func parseWTimeout(val *yaml.Node) (time.Duration, error) {
	if val.ShortTag() == "!!int" {
		ms, err := strconv.ParseInt(val.Value, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "line %d: invalid wtimeout", val.Line)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(val.Value)
	if err != nil {
		return 0, errors.Wrapf(err, "line %d: invalid wtimeout", val.Line)
	}
	return d, nil
}

func parseFlag(name string, val *yaml.Node) (optional.Value[bool], error) {
	if val.ShortTag() == nullTag {
		return optional.Clear[bool](), nil
	}
	var b bool
	if err := val.Decode(&b); err != nil {
		return optional.Value[bool]{}, errors.Wrapf(err, "line %d: invalid %s", val.Line, name)
	}
	return optional.Some(b), nil
}
