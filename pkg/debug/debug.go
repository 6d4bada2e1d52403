// Package debug provides conditional debug logging for estimnet.
//
// Debug logging is enabled by setting the ESTIMNET_DEBUG environment
// variable:
//
//	ESTIMNET_DEBUG=1 estimnet model.yaml
//
// When enabled, messages are written to stderr with timestamps. When
// disabled (the default), every function here is a cheap no-op, so call
// sites inside estimation loops cost nothing in normal runs.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

var (
	enabled = os.Getenv("ESTIMNET_DEBUG") != ""
	logger  = log.New(os.Stderr, "[ESTIMNET_DEBUG] ", log.Ltime|log.Lmicroseconds)
)

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
}

// SetOutput redirects debug output away from stderr, mainly for tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Log writes a printf-style debug message if debug logging is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// Trace logs entry to a named phase and returns a function that logs exit
// with the elapsed time:
//
//	stop := debug.Trace("algorithm EE")
//	defer stop()
func Trace(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}
