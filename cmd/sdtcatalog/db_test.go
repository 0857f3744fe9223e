package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-sdt/internal/sdttest"
)

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	small := sdttest.Build(t, sdttest.Config{
		Width: 4, Height: 4, Channels: 1, Bins: 2,
		TacR: 5e-8, TacG: 1,
	})
	large := sdttest.Build(t, sdttest.Config{
		Width: 8, Height: 8, Channels: 2, Bins: 4,
		TacR: 5e-8, TacG: 1,
	})

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.sdt"), small, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "a.SDT"), large, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.sdt"), []byte("not an sdt"), 0o644))

	return dir
}

func TestScanAndList(t *testing.T) {
	dir := writeTree(t)
	cat, err := openCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	var logged bytes.Buffer
	require.NoError(t, cat.Scan(dir, log.New(&logged, "", 0)))
	assert.Contains(t, logged.String(), "corrupt.sdt", "undecodable files are logged, not fatal")

	var out bytes.Buffer
	require.NoError(t, cat.List(&out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2, "two decodable files, corrupt and non-sdt skipped")
	assert.Contains(t, lines[0], "b.sdt")
	assert.Contains(t, lines[0], "4x4")
	assert.Contains(t, lines[1], "a.SDT")
	assert.Contains(t, lines[1], "8x8")
	assert.Contains(t, lines[1], "2 ch")
}

func TestScanUpsert(t *testing.T) {
	dir := writeTree(t)
	cat, err := openCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	logger := log.New(io.Discard, "", 0)
	require.NoError(t, cat.Scan(dir, logger))
	require.NoError(t, cat.Scan(dir, logger))

	var out bytes.Buffer
	require.NoError(t, cat.List(&out))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Len(t, lines, 2, "rescans update rows instead of duplicating them")
}

func TestListEmptyCatalog(t *testing.T) {
	cat, err := openCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	var out bytes.Buffer
	require.NoError(t, cat.List(&out))
	assert.Zero(t, out.Len())
}
