// Copyright (C) MongoDB, Inc. 2026-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command wcinspect resolves the write concern a client would send from a
// connection string and an optional YAML override file, and prints it.
//
// Usage:
//
//	wcinspect [-uri URI] [-config FILE] [-env-file FILE] [-log-level LEVEL] [-format text|json]
//
// When -uri is empty the MONGODB_URI environment variable is used, which may
// be set in the -env-file (".env" by default).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/pretty"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ikmak/mongo-writeconcern/mongo/writeconcern"
	"github.com/ikmak/mongo-writeconcern/x/mongo/driver/connstring"
)

const (
	uriEnv         = "MONGODB_URI"
	defaultEnvFile = ".env"
)

func main() {
	if err := mainReal(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mainReal(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("wcinspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	uri := fs.String("uri", "", "connection string; defaults to $"+uriEnv)
	configFile := fs.String("config", "", "YAML file with write concern overrides")
	envFile := fs.String("env-file", defaultEnvFile, "dotenv file to load before reading $"+uriEnv)
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	format := fs.String("format", "text", "output format (text or json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(stderr)
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		return errors.Wrap(err, "invalid -log-level")
	}
	log.SetLevel(level)

	if err := loadEnv(log, *envFile); err != nil {
		return err
	}

	var cfg *fileConfig
	if *configFile != "" {
		if cfg, err = loadConfig(*configFile); err != nil {
			return err
		}
	}

	if *uri == "" {
		*uri = os.Getenv(uriEnv)
	}
	if *uri == "" && cfg != nil {
		*uri = cfg.URI
	}

	wc, err := resolve(log, *uri, cfg)
	if err != nil {
		return err
	}
	return render(stdout, wc, *format)
}

// loadEnv loads path into the environment. A missing default file is not an
// error.
func loadEnv(log logrus.FieldLogger, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) && path == defaultEnvFile {
		log.WithField("file", path).Debug("no env file")
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "cannot load env file %s", path)
	}
	log.WithField("file", path).Debug("loaded env file")
	return nil
}

// resolve builds the write concern from uri and then applies the overrides
// from cfg, if any.
func resolve(log logrus.FieldLogger, uri string, cfg *fileConfig) (*writeconcern.WriteConcern, error) {
	wc := writeconcern.Acknowledged()

	if uri != "" {
		cs, err := connstring.Parse(uri)
		if err != nil {
			return nil, err
		}
		fromURI, err := cs.WriteConcern()
		if err != nil {
			return nil, err
		}
		if fromURI != nil {
			wc = fromURI
		}
		log.WithFields(logrus.Fields{
			"hosts":        cs.Hosts,
			"writeConcern": wc.String(),
		}).Debug("parsed connection string")
	}

	if cfg == nil {
		return wc, nil
	}

	o, err := cfg.overrides()
	if err != nil {
		return nil, errors.Wrap(err, "invalid writeConcern in config")
	}
	merged, err := wc.With(o)
	if err != nil {
		return nil, errors.Wrap(err, "cannot apply config overrides")
	}
	if merged == wc {
		log.Debug("config overrides left the write concern unchanged")
	} else {
		log.WithFields(logrus.Fields{
			"before": wc.String(),
			"after":  merged.String(),
		}).Info("applied config overrides")
	}
	return merged, nil
}

func render(w io.Writer, wc *writeconcern.WriteConcern, format string) error {
	js, err := bson.MarshalExtJSON(bson.Raw(wc.Document()), false, false)
	if err != nil {
		return errors.Wrap(err, "cannot render write concern as extended JSON")
	}
	js = pretty.Pretty(js)

	switch format {
	case "json":
		_, err = w.Write(js)
	case "text":
		_, err = fmt.Fprintf(w, "write concern: %s\nacknowledged:  %t\nhash:          %016x\ndocument:\n%s",
			wc, wc.Acknowledged(), wc.Hash(), js)
	default:
		return errors.Errorf("unknown -format %q", format)
	}
	return err
}
