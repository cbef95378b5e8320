package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingWriter_WritesToFile(t *testing.T) {
	// Given a writer on a fresh path
	dir := t.TempDir()
	path := filepath.Join(dir, "wikigen.log")

	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	// When writing a log line
	line := []byte("{\"level\":\"INFO\",\"msg\":\"hello\"}\n")
	n, err := w.Write(line)

	// Then the line lands in the file
	require.NoError(t, err)
	assert.Equal(t, len(line), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestRotatingWriter_RotatesAtMaxSize(t *testing.T) {
	// Given a writer with a 1MB cap
	dir := t.TempDir()
	path := filepath.Join(dir, "wikigen.log")

	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	// When writing past the cap
	chunk := bytes.Repeat([]byte("x"), 512*1024)
	for i := 0; i < 3; i++ {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}

	// Then a rotated file exists alongside the current one
	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "expected rotated file after exceeding max size")
}

func TestRotatingWriter_DropsOldestBeyondMaxFiles(t *testing.T) {
	// Given a writer keeping at most 2 rotations
	dir := t.TempDir()
	path := filepath.Join(dir, "wikigen.log")

	w, err := NewRotatingWriter(path, 1, 2)
	require.NoError(t, err)
	defer w.Close()

	chunk := bytes.Repeat([]byte("y"), 1024*1024)
	for i := 0; i < 5; i++ {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}

	// Then at most maxFiles rotations remain
	matches, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestSetup_ProducesJSONLogs(t *testing.T) {
	// Given a logger writing to a temp file
	dir := t.TempDir()
	path := filepath.Join(dir, "wikigen.log")

	logger, cleanup, err := Setup(Config{
		Level:     "debug",
		FilePath:  path,
		MaxSizeMB: 1,
		MaxFiles:  2,
	})
	require.NoError(t, err)

	// When logging a structured event
	logger.Info("index complete", "files", 12, "chunks", 48)
	cleanup()

	// Then the file holds a JSON line with the attributes
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"msg\":\"index complete\"")
	assert.Contains(t, string(data), "\"files\":12")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("warning").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	// Unknown levels fall back to info
	assert.Equal(t, "INFO", parseLevel("verbose").String())
	assert.Equal(t, "INFO", parseLevel(strings.ToUpper("info")).String())
}

func TestDefaultLogDir_EnvOverride(t *testing.T) {
	// Given an explicit log directory in the environment
	dir := t.TempDir()
	t.Setenv("WIKIGEN_LOG_DIR", dir)

	// Then the default paths resolve under it
	assert.Equal(t, dir, DefaultLogDir())
	assert.Equal(t, filepath.Join(dir, "wikigen.log"), DefaultLogPath())
}
