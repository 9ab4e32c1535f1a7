// Package util collects small helpers shared across the storage
// packages.
package util

import (
	"log/slog"
	"os"
)

// CloseFile closes f and logs a warning if that fails. Used with
// defer around every scoped file handle so close errors are never
// silently dropped but also never abort an otherwise-successful
// operation.
func CloseFile(f *os.File) {
	if err := f.Close(); err != nil {
		slog.Warn("util: close file failed", "path", f.Name(), "err", err)
	}
}
