package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/rht/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// infoEnabled gates LogInfo. Off until EnableLogInfo is called.
var infoEnabled atomic.Bool

var (
	// outputMutex protects the writers below
	outputMutex sync.Mutex

	infoOutput  io.Writer = os.Stdout
	errorOutput io.Writer = os.Stderr

	// debugOutput is the writer for debug output (nil means no output)
	debugOutput io.Writer
)

const (
	infoPrefix  = "I: "
	errorPrefix = "ERR: "
)

// EnableLogInfo turns on informational output for the rest of the process.
func EnableLogInfo() {
	infoEnabled.Store(true)
}

// DisableLogInfo turns informational output back off.
func DisableLogInfo() {
	infoEnabled.Store(false)
}

// IsLogInfoEnabled reports the current state of the info gate.
func IsLogInfoEnabled() bool {
	return infoEnabled.Load()
}

// LogInfo returns the sink for informational messages. When the gate is off
// the sink discards everything, so callers can write unconditionally. A call
// racing with a toggle may observe either setting.
func LogInfo() io.Writer {
	if !infoEnabled.Load() {
		return io.Discard
	}
	return &prefixWriter{prefix: infoPrefix, out: getInfoWriter()}
}

// LogError returns the sink for error messages. It is never gated.
func LogError() io.Writer {
	return &prefixWriter{prefix: errorPrefix, out: getErrorWriter()}
}

// Infof writes one formatted line to LogInfo.
func Infof(format string, args ...interface{}) {
	if !infoEnabled.Load() {
		return
	}
	fmt.Fprintf(LogInfo(), format+"\n", args...)
}

// Errorf writes one formatted line to LogError.
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(LogError(), format+"\n", args...)
}

// SetInfoOutput redirects informational output. Pass nil to restore stdout.
func SetInfoOutput(w io.Writer) {
	outputMutex.Lock()
	defer outputMutex.Unlock()
	if w == nil {
		w = os.Stdout
	}
	infoOutput = w
}

// SetErrorOutput redirects error output. Pass nil to restore stderr.
func SetErrorOutput(w io.Writer) {
	outputMutex.Lock()
	defer outputMutex.Unlock()
	if w == nil {
		w = os.Stderr
	}
	errorOutput = w
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	outputMutex.Lock()
	defer outputMutex.Unlock()
	debugOutput = w
}

func getInfoWriter() io.Writer {
	outputMutex.Lock()
	defer outputMutex.Unlock()
	return infoOutput
}

func getErrorWriter() io.Writer {
	outputMutex.Lock()
	defer outputMutex.Unlock()
	return errorOutput
}

// getDebugWriter returns the writer for debug output, or nil if none is configured
func getDebugWriter() io.Writer {
	outputMutex.Lock()
	defer outputMutex.Unlock()
	return debugOutput
}

// IsDebugEnabled returns true if debug mode is enabled by build flag or environment
func IsDebugEnabled() bool {
	// Check build flag first
	if EnableDebug == "true" {
		return true
	}

	// Allow runtime override via environment variable
	if os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true" {
		return true
	}

	return false
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG] "+format, args...)
}

// Log provides structured debug logging with component names
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// LogParse provides debug logging for parser backend operations
func LogParse(format string, args ...interface{}) {
	Log("PARSE", format, args...)
}

// LogExtract provides debug logging for extraction runs
func LogExtract(format string, args ...interface{}) {
	Log("EXTRACT", format, args...)
}

// LogWatch provides debug logging for the file watcher
func LogWatch(format string, args ...interface{}) {
	Log("WATCH", format, args...)
}

// prefixWriter emits prefix before the first Write only, so one sink taken
// from LogInfo or LogError carries one tag however many writes follow.
type prefixWriter struct {
	prefix string
	out    io.Writer
	primed bool
}

func (w *prefixWriter) Write(p []byte) (int, error) {
	if !w.primed {
		w.primed = true
		if _, err := io.WriteString(w.out, w.prefix); err != nil {
			return 0, err
		}
	}
	return w.out.Write(p)
}
