// Package walletlog provides the logging backend shared by every package in
// this module. Each package keeps its own package-level Logger and calls
// UseLogger to wire it to a subsystem tag, following the same convention the
// rest of the abesuite/lightningnetwork tree uses (a disabled no-op logger
// until the embedding application installs a real backend).
package walletlog

import (
	"github.com/btcsuite/btclog"
)

// Disabled is a logger that discards all messages. It is used as the
// default for every subsystem logger until the embedding application calls
// UseLogger.
var Disabled = btclog.Disabled

// Backend is the shared btclog.Backend every subsystem logger is derived
// from. NewBackend installs it; embedding applications that don't care about
// log output can leave it nil, in which case subsystems stay Disabled.
var Backend *btclog.Backend

// NewBackend creates a logging backend that writes to w and installs it as
// the shared Backend for SubLogger.
func NewBackend(w btclog.Writer) {
	Backend = btclog.NewBackend(w)
}

// SubLogger returns a logger for the named subsystem, backed by Backend if
// one has been installed, or Disabled otherwise.
func SubLogger(subsystem string) btclog.Logger {
	if Backend == nil {
		return Disabled
	}
	l := Backend.Logger(subsystem)
	l.SetLevel(btclog.LevelInfo)
	return l
}

// SetLevel sets the log level of every logger created through SubLogger that
// shares the given subsystem tag. It is a no-op when no Backend is
// installed.
func SetLevel(subsystem string, level btclog.Level) {
	if Backend == nil {
		return
	}
	Backend.Logger(subsystem).SetLevel(level)
}
