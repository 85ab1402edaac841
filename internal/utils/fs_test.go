package utils

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritableDirCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	assert.False(t, FileExists(dir))

	assert.True(t, WritableDir(dir))
	assert.True(t, FileExists(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWritableDirRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	assert.False(t, WritableDir(path))
}

func TestSaveTOMLFileReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("stale = true\n"), 0644))

	type limits struct {
		MaxLimit int `toml:"max_limit"`
	}
	require.NoError(t, SaveTOMLFile(limits{MaxLimit: 9}, path))

	var got limits
	_, err := toml.DecodeFile(path, &got)
	require.NoError(t, err)
	assert.Equal(t, 9, got.MaxLimit)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveTOMLFileMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.toml")
	assert.Error(t, SaveTOMLFile(map[string]int{"a": 1}, path))
}

func TestGetAbsolutePath(t *testing.T) {
	assert.Equal(t, "unknown", GetAbsolutePath(""))

	abs := filepath.Join(t.TempDir(), "config.toml")
	assert.Equal(t, abs, GetAbsolutePath(abs))

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "config.toml"), GetAbsolutePath("config.toml"))
}

func TestRankList(t *testing.T) {
	assert.Empty(t, RankList(0))
	assert.Empty(t, RankList(-3))
	assert.Equal(t, []uint16{1, 2, 3}, RankList(3))

	ranks := RankList(math.MaxUint16 + 2)
	assert.Equal(t, uint16(math.MaxUint16-1), ranks[math.MaxUint16-2])
	assert.Equal(t, uint16(math.MaxUint16), ranks[math.MaxUint16-1])
	assert.Equal(t, uint16(math.MaxUint16), ranks[math.MaxUint16+1])
}
