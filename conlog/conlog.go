// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog is the compiler console. Messages go to a slog.Logger,
// developer messages only when verbose output is enabled.
package conlog

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

var (
	logger  atomic.Pointer[slog.Logger]
	verbose atomic.Bool
)

func init() {
	logger.Store(slog.Default())
}

func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger.Store(l)
}

func Logger() *slog.Logger {
	return logger.Load()
}

func SetVerbose(v bool) {
	verbose.Store(v)
}

func Verbose() bool {
	return verbose.Load()
}

func Printf(format string, v ...interface{}) {
	logger.Load().Info(fmt.Sprintf(format, v...))
}

// DPrintf only prints in verbose mode
func DPrintf(format string, v ...interface{}) {
	if !verbose.Load() {
		return
	}
	l := logger.Load()
	// slog drops debug records on default handlers
	l.Log(context.Background(), slog.LevelInfo, fmt.Sprintf(format, v...), "dev", true)
}

func Warnf(format string, v ...interface{}) {
	logger.Load().Warn(fmt.Sprintf(format, v...))
}
