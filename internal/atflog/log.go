// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package atflog is a small leveled-logger facade reconstructed in the
// image of the teacher module's own (unpulled) github.com/saferwall/pe/log
// helper: a Logger interface, a level-filtering wrapper, and a Helper with
// printf-style methods per level.
package atflog

import (
	"fmt"
	"io"
	"log"
)

// Level is a logging severity.
type Level int

// Severity levels, most to least verbose.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink a Helper writes through.
type Logger interface {
	Log(level Level, msg string)
}

// stdLogger writes through the standard library's *log.Logger.
type stdLogger struct {
	out *log.Logger
}

// NewStdLogger returns a Logger that writes to w with a standard
// timestamped prefix.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{out: log.New(w, "", log.LstdFlags)}
}

func (s *stdLogger) Log(level Level, msg string) {
	s.out.Printf("[%s] %s", level, msg)
}

// filter wraps a Logger, dropping anything below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// NewFilter returns a Logger that only forwards entries at or above min.
func NewFilter(next Logger, min Level) Logger {
	return &filter{next: next, min: min}
}

func (f *filter) Log(level Level, msg string) {
	if level < f.min {
		return
	}
	f.next.Log(level, msg)
}

// Helper adds printf-style convenience methods over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger with printf-style convenience methods.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs at LevelDebug.
func (h *Helper) Debugf(format string, args ...any) { h.logf(LevelDebug, format, args...) }

// Infof logs at LevelInfo.
func (h *Helper) Infof(format string, args ...any) { h.logf(LevelInfo, format, args...) }

// Warnf logs at LevelWarn.
func (h *Helper) Warnf(format string, args ...any) { h.logf(LevelWarn, format, args...) }

// Errorf logs at LevelError.
func (h *Helper) Errorf(format string, args ...any) { h.logf(LevelError, format, args...) }

func (h *Helper) logf(level Level, format string, args ...any) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, fmt.Sprintf(format, args...))
}
