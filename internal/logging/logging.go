package logging

import (
	"io"
	"os"
	"sync"
)

type manager struct {
	errorLog  *RotatingFile
	accessLog *RotatingFile
}

var (
	globalMu sync.RWMutex
	global   = manager{}
)

// Configure sets up the error and access streams. Empty paths disable a
// stream; "stderr"/"stdout" select the process streams; anything else is a
// file rotated at maxSize bytes.
func Configure(errorPath, accessPath string, maxSize int64) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global.errorLog = NewRotatingFile(errorPath, maxSize)
	global.accessLog = NewRotatingFile(accessPath, maxSize)
}

// ErrorWriter is the destination for application logs, falling back to
// stderr when no error stream is configured.
func ErrorWriter() io.Writer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global.errorLog != nil && global.errorLog.Enabled() {
		return global.errorLog
	}
	return os.Stderr
}

// AccessWriter is the destination for per-request access logs; it discards
// when no access stream is configured.
func AccessWriter() io.Writer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global.accessLog != nil && global.accessLog.Enabled() {
		return global.accessLog
	}
	return io.Discard
}
