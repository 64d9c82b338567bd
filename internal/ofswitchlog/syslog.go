/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package ofswitchlog

import (
	"log/syslog"

	"github.com/superkkt/go-logging"
)

// SyslogBackend adapts a syslog writer into an op/go-logging backend,
// grounded on the teacher's log.Syslog (log/log.go): a leveled wrapper
// around log/syslog that drops records below its configured severity
// rather than relying on the syslog daemon's own filtering.
type SyslogBackend struct {
	writer *syslog.Writer
	level  logging.Level
}

// NewSyslogBackend dials the local syslog daemon tagged as name.
func NewSyslogBackend(name string) (*SyslogBackend, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, name)
	if err != nil {
		return nil, err
	}
	return &SyslogBackend{writer: w, level: logging.INFO}, nil
}

// SetLevel gates which records reach syslog.
func (b *SyslogBackend) SetLevel(level logging.Level) {
	b.level = level
}

// Log implements logging.Backend.
func (b *SyslogBackend) Log(level logging.Level, calldepth int, rec *logging.Record) error {
	if level > b.level {
		return nil
	}
	msg := rec.Formatted(calldepth + 1)
	switch level {
	case logging.CRITICAL, logging.ERROR:
		return b.writer.Err(msg)
	case logging.WARNING:
		return b.writer.Warning(msg)
	case logging.NOTICE:
		return b.writer.Notice(msg)
	case logging.INFO:
		return b.writer.Info(msg)
	default:
		return b.writer.Debug(msg)
	}
}
