// Package logger configures the standard logger and adds a debug level that
// is only printed in debug mode.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

var debug atomic.Bool

// Init sets the standard logger flags and output. A nil writer keeps stderr.
func Init(debugMode bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	debug.Store(debugMode)
}

// DebugEnabled reports whether Debugf prints.
func DebugEnabled() bool {
	return debug.Load()
}

// Debugf logs like log.Printf when debug mode is on.
func Debugf(format string, args ...any) {
	if !debug.Load() {
		return
	}
	log.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
}
