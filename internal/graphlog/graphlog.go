// Package graphlog provides pass-level debug logging. Passes log phase
// boundaries and full graph dumps at Debug level through a process-wide
// slog.Logger; the CLI swaps in a Debug-level handler under --verbose.
package graphlog

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/diffkit/diffkit/internal/ir"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.Default())
}

// SetLogger replaces the pass logger.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Debug logs a pass-internal message at Debug level.
func Debug(msg string, args ...any) {
	logger.Load().Debug(msg, args...)
}

// Dump logs a full graph rendering at Debug level. The rendering is
// skipped entirely when Debug is disabled.
func Dump(label string, g *ir.Graph) {
	l := logger.Load()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug(label, "graph", "\n"+g.String())
}
