package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/bookreport/pkg/domain"
	"github.com/adfharrison1/bookreport/pkg/storage"
)

// embeddedConfig writes a config selecting the embedded store in a temp dir
// and makes that dir the working directory
func embeddedConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "bookreport.yaml")
	content := "store:\n  driver: embedded\nembedded:\n  data_file: " +
		filepath.Join(dir, "books.godb") + "\nlog:\n  level: error\nreport:\n  color: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String() + errOut.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "books-in-genre")
	assert.Contains(t, out, "explain-title")
	assert.Contains(t, out, "Books published after 1900")
}

func TestSeedThenRun(t *testing.T) {
	cfg := embeddedConfig(t)

	_, err := execute(t, "--config", cfg, "seed")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(filepath.Dir(cfg), "books.godb"))

	out, err := execute(t, "--config", cfg, "--only", "books-in-genre,top-author")
	require.NoError(t, err)
	assert.Contains(t, out, "Books in Fiction genre")
	assert.Contains(t, out, "The Great Gatsby")
	assert.Contains(t, out, "J.R.R. Tolkien")
	assert.NotContains(t, out, "Books by George Orwell")
}

func TestFullRunOnSeededStore(t *testing.T) {
	cfg := embeddedConfig(t)

	_, err := execute(t, "--config", cfg, "seed")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Matched 1, modified 1")
	assert.Contains(t, out, "Deleted 1")
	assert.Contains(t, out, "Index title_1 ready")
	assert.Contains(t, out, "IXSCAN")
}

func TestFailedRunStillSaves(t *testing.T) {
	cfg := embeddedConfig(t)
	dataFile := filepath.Join(filepath.Dir(cfg), "books.godb")

	_, err := execute(t, "--config", cfg, "seed")
	require.NoError(t, err)

	// a year that cannot be bucketed makes books-by-decade fail
	engine, err := storage.Open(storage.WithDataFile(dataFile))
	require.NoError(t, err)
	_, err = engine.Insert("books", domain.Document{"title": "Untitled", "published_year": "unknown"})
	require.NoError(t, err)
	require.NoError(t, engine.Close(context.Background()))

	out, err := execute(t, "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation books-by-decade failed")
	assert.Contains(t, out, "Matched 1, modified 1")
	assert.NotContains(t, out, "Index title_1 ready")

	// the update made before the failure reached the snapshot on close
	reopened, err := storage.Open(storage.WithDataFile(dataFile))
	require.NoError(t, err)
	defer reopened.Close(context.Background())

	docs, err := reopened.Find("books", domain.Where(domain.Eq("title", "Moby Dick")), nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.EqualValues(t, 15.99, docs[0]["price"])

	gone, err := reopened.Find("books", domain.Where(domain.Eq("title", "Animal Farm")), nil)
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestSeedAppend(t *testing.T) {
	cfg := embeddedConfig(t)

	_, err := execute(t, "--config", cfg, "seed")
	require.NoError(t, err)
	_, err = execute(t, "--config", cfg, "seed", "--append")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "--only", "books-by-author")
	require.NoError(t, err)
	// Animal Farm and 1984, twice each
	assert.Contains(t, strings.ToUpper(out), "TOTAL: 4")
}

func TestUnknownOperation(t *testing.T) {
	_, err := execute(t, "--only", "no-such-op")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: sqlite\n"), 0o644))

	out, err := execute(t, "--config", path)
	assert.Error(t, err)
	assert.Contains(t, out, "unknown store driver")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " ", "c"}))
	assert.Nil(t, splitList(nil))
}
