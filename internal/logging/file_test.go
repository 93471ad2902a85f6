package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	log, closer := NewFileLogger(FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 1, Level: slog.LevelInfo})
	log.With("module", "syncer").Info(context.Background(), "sync finished", "tables", 6)
	log.Debug(context.Background(), "filtered out")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "msg=\"sync finished\"")
	assert.Contains(t, out, "module=syncer")
	assert.Contains(t, out, "tables=6")
	assert.NotContains(t, out, "filtered out")
}
