package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, lf *logFile, from, to int) {
	t.Helper()
	for i := from; i < to; i++ {
		_, err := fmt.Fprintf(lf, "line-%02d\n", i)
		require.NoError(t, err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(data), "\n"))
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestLogFile_TrimsToNewestWholeLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nestly.log")
	lf, err := openLogFile(path, 100, 60)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lf.Close() })

	writeLines(t, lf, 0, 40)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(100))
	assert.Equal(t, lf.size, info.Size())

	lines := readLines(t, path)
	require.NotEmpty(t, lines)
	assert.Equal(t, "line-39", lines[len(lines)-1])
	var first int
	_, err = fmt.Sscanf(lines[0], "line-%02d", &first)
	require.NoError(t, err)
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("line-%02d", first+i), line)
	}
}

func TestLogFile_TrimsOversizedFileOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nestly.log")
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "line-%02d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	lf, err := openLogFile(path, 100, 40)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lf.Close() })

	lines := readLines(t, path)
	assert.Equal(t, []string{"line-25", "line-26", "line-27", "line-28", "line-29"}, lines)

	writeLines(t, lf, 30, 31)
	lines = readLines(t, path)
	assert.Equal(t, "line-30", lines[len(lines)-1])
}

func TestLogFile_KeepsSmallFileIntact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nestly.log")
	lf, err := openLogFile(path, 1024, 512)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lf.Close() })

	writeLines(t, lf, 0, 5)
	assert.Len(t, readLines(t, path), 5)
}

func TestLogFile_RejectsKeepNotBelowMax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nestly.log")
	_, err := openLogFile(path, 100, 100)
	require.Error(t, err)
	_, err = openLogFile(path, 100, 0)
	require.Error(t, err)
}
