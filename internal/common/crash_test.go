package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCrashFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	previous := CrashLogDir
	t.Cleanup(func() { CrashLogDir = previous })

	InstallCrashHandler(dir)
	require.DirExists(t, dir)

	path := WriteCrashFile("boom", "goroutine 1 [running]:")

	require.NotEmpty(t, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "LUNCHTIME CRASH REPORT")
	assert.Contains(t, string(data), "boom")
	assert.Contains(t, string(data), "goroutine 1 [running]:")
}
