package safe

import (
	"context"
	"fmt"
	"io"

	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
)

// Close closes c and logs a failure. A nil closer is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", "type", fmt.Sprintf("%T", c), "error", err)
	}
}

// Write writes data to w and logs a failure. It is meant for response bodies
// whose status line is already sent, where the error cannot be returned.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if n, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("failed to write", "written", n, "size", len(data), "error", err)
	}
}

// Cleanup runs fn and logs a failure under what. A nil fn is ignored.
func Cleanup(ctx context.Context, what string, fn func() error) {
	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		logging.From(ctx).Warn("failed to clean up", "target", what, "error", err)
	}
}
