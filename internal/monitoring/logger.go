// Package monitoring holds the diagnostic logger shared by the analysis
// packages.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// is swapped out by SetLogger; tests mute it with SetLogger(nil).
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs through Logf with a "warning: " prefix. Label-level data
// problems (unparseable cells, degenerate labels) are reported this way.
func Warnf(format string, v ...interface{}) {
	Logf("warning: "+format, v...)
}

// Prefixed returns a logger that writes through Logf with a fixed prefix,
// resolved at call time so later SetLogger calls still apply.
func Prefixed(prefix string) func(format string, v ...interface{}) {
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}
