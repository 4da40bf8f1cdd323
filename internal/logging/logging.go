// Package logging appends JSON-lines entries to a single log file. Errors
// are always recorded; trace entries only when tracing is enabled. Nothing
// here may write to stdout or stderr while the program runs full-screen,
// except as a fallback when the log file itself is unusable.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const defaultLogFile = "trammel.log"

// The sink stays open across entries; traces fire on every RPC exchange and
// poll cycle.
var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	sink         *os.File
)

// entry is one line in the log file.
type entry struct {
	Time    time.Time   `json:"time"`
	Level   string      `json:"level"`
	Event   string      `json:"event,omitempty"`
	Error   string      `json:"error,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// Configure sets the log destination and closes any open sink. Empty values
// fall back to the default path. Directories are created when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		sink.Close()
		sink = nil
	}
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// SetTraceEnabled toggles emission of trace entries. Error entries are
// written regardless.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// Error appends an error entry to the log.
func Error(err error) {
	if err == nil {
		return
	}
	write(entry{Time: time.Now().UTC(), Level: "error", Error: err.Error()})
}

// Trace appends a trace entry when tracing is enabled. Payloads must never
// contain credentials.
func Trace(event string, payload interface{}) {
	mu.Lock()
	enabled := traceEnabled
	mu.Unlock()
	if !enabled {
		return
	}
	write(entry{Time: time.Now().UTC(), Level: "trace", Event: event, Payload: payload})
}

func write(e entry) {
	mu.Lock()
	defer mu.Unlock()
	if sink == nil {
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
			return
		}
		sink = f
	}
	if err := json.NewEncoder(sink).Encode(e); err != nil {
		fmt.Fprintf(os.Stderr, "log encoding failed: %v\n", err)
	}
}
