// Package cli holds the flag plumbing shared by the sheaf commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/store"
	"github.com/cognicore/sheaf/pkg/sheaf/store/filestore"
	"github.com/cognicore/sheaf/pkg/sheaf/store/sqlite"
)

// Store backends accepted by --backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// OpenStore opens the named backend at path.
func OpenStore(ctx context.Context, backend, path string) (store.Store, error) {
	switch backend {
	case BackendFile, "":
		return filestore.Open(path)
	case BackendSQLite:
		return sqlite.OpenSQLite(ctx, path)
	}
	return nil, fmt.Errorf("backend %q: %w", backend, internalerr.ErrInvalidConfig)
}

// NewLogger returns a text logger on stderr.
func NewLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// SplitList parses a comma separated flag value, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
