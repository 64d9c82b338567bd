/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

// Package ofswitchlog provides the per-package leveled loggers used by
// the control plane and pipeline driver. Packet-path code (match,
// action, instruction evaluation) never logs: §7 treats packet-path
// malformation as silent no-op, not an error category, so there is
// nothing worth logging on that path.
package ofswitchlog

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/superkkt/go-logging"
)

var backend logging.LeveledBackend

// Get returns the named logger, following the teacher's per-package
// MustGetLogger convention (cmd/cherry/main.go, network/controller.go).
func Get(name string) *logging.Logger {
	return logging.MustGetLogger(name)
}

// SetBackend installs the leveled backend used by SetLevel; called once
// during daemon startup.
func SetBackend(b logging.LeveledBackend) {
	backend = b
}

// SetLevel re-levels every named logger, mirroring the teacher's
// viper.OnConfigChange hook that re-levels the running logger on a
// config file change.
func SetLevel(level logging.Level) {
	if backend == nil {
		return
	}
	backend.SetLevel(level, "")
}

// DumpFields renders an OXM-keyed structure for Debug-level logging,
// using go-spew rather than "%+v" so nested maps print deterministically
// enough to be useful in a support bundle.
func DumpFields(v interface{}) string {
	return spew.Sdump(v)
}
