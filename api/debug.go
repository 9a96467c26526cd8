package api

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// apiLog traces session lifecycle events (create, destroy, load
// failures). It stays disabled unless SYNACOR_API_DEBUG is set, since
// the server's normal output should be just its request log.
var apiLog *log.Logger

func init() {
	if os.Getenv("SYNACOR_API_DEBUG") != "" {
		// File handle intentionally not closed; it lives for the
		// process and the OS reclaims it on exit.
		logPath := filepath.Join(os.TempDir(), "synacor-api-debug.log")
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			apiLog = log.New(os.Stderr, "API: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			apiLog = log.New(f, "API: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		apiLog = log.New(io.Discard, "", 0)
	}
}

// debugLog logs a message if debug logging is enabled.
func debugLog(format string, args ...interface{}) {
	apiLog.Printf(format, args...)
}
