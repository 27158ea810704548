package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsZero(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	p, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, UI{}, p)
}

func TestSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(UI{LastMode: "CRYPTO", LastQuery: "SOL"}))
	p, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "CRYPTO", p.LastMode)
	require.Equal(t, "SOL", p.LastQuery)

	_, err = os.Stat(filepath.Join(dir, prefsFile+".tmp"))
	require.True(t, os.IsNotExist(err))
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, prefsFile), []byte("{"), 0o600))
	s, err := NewStore(dir)
	require.NoError(t, err)
	_, err = s.Load()
	require.Error(t, err)
}
