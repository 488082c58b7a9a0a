// Package obs contains observability utilities such as logging.
package obs

import (
	"go.uber.org/zap"
)

// Logger is the global structured logger used by the machine.
//
// It starts as a no-op logger so packages may log before InitLogger runs.
var Logger = zap.NewNop()

// InitLogger replaces Logger with a JSON production logger at info level.
// If the production config cannot be built the no-op logger is kept.
func InitLogger() {
	l, err := zap.NewProduction()
	if err != nil {
		return
	}
	Logger = l
}

// Sync flushes buffered log entries.
func Sync() { _ = Logger.Sync() }
