package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("WIKIGEN_LOG_DIR", t.TempDir())
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: listing subcommands
	names := make(map[string]bool)
	for _, sc := range cmd.Commands() {
		names[sc.Name()] = true
	}

	// Then: all corpus commands are registered
	for _, want := range []string{"index", "search", "remove", "clear", "stats"} {
		assert.True(t, names[want], "should have %s command", want)
	}
}

func TestSearchCmd_HasFlags(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding the search command
	searchCmd, _, err := cmd.Find([]string{"search"})
	require.NoError(t, err)

	// Then: the retrieval flags are declared with their defaults
	limit := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "10", limit.DefValue)

	assert.NotNil(t, searchCmd.Flags().Lookup("directory"))
	assert.NotNil(t, searchCmd.Flags().Lookup("keyword-only"))
	assert.NotNil(t, searchCmd.Flags().Lookup("per-file"))
}

func TestIndexThenSearch_EndToEnd(t *testing.T) {
	// Given: a corpus directory, forced to static embeddings
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WIKIGEN_EMBEDDINGS_PROVIDER", "static")
	root := writeCorpus(t, map[string]string{
		"deploy.md": "# Deploy\n\nKubernetes rollout procedure with cluster drain steps.\n",
	})

	// When: indexing and then searching via the CLI
	out, err := execute(t, "index", root, "--json")
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, float64(1), summary["added"])

	out, err = execute(t, "search", "rollout", "--dir", root, "--json")
	require.NoError(t, err)

	// Then: the search output names the indexed file
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "rollout", doc["query"])
	assert.GreaterOrEqual(t, doc["count"], float64(1))
}

func TestIndexCmd_MissingDirectoryFails(t *testing.T) {
	// Given: a directory path that does not exist
	missing := filepath.Join(t.TempDir(), "nope")

	// When: indexing it
	_, err := execute(t, "index", missing)

	// Then: the command fails with a directory error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestClearCmd_AbortsWithoutConfirmation(t *testing.T) {
	// Given: a clear command fed a rejection on stdin
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WIKIGEN_LOG_DIR", t.TempDir())
	root := writeCorpus(t, map[string]string{"a.md": "# A\n"})

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(bytes.NewBufferString("n\n"))
	cmd.SetArgs([]string{"clear", "--dir", root})

	// When: executing without --force
	err := cmd.Execute()

	// Then: nothing is cleared and the command reports the abort
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "aborted")
}
