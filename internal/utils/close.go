package utils

import (
	"io"

	"github.com/MrSnakeDoc/arvai/internal/logger"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs a failure under what.
func CloseLogged(c io.Closer, log logger.Logger, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("failed to close "+what, logger.Error(err))
		return
	}
	log.Debug(what + " closed")
}
