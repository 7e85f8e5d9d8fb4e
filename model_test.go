package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PackTools/kcap"
)

func modelPack(t *testing.T) string {
	t.Helper()
	packPath := filepath.Join(t.TempDir(), "Model.Pack")
	w := kcap.NewWriter()
	w.AddBytes(`Script\Stage02.txt`, []byte("stage two"))
	w.AddBytes(`bgm\title.ogg`, []byte("OggS title"))
	w.AddBytes(`script\stage01.txt`, []byte("stage one!"))
	w.AddBytes(`image\bg.bmp`, []byte("BM"))
	require.NoError(t, w.WriteFile(packPath, kcap.WithPassword("ModelPass")))
	return packPath
}

func visibleNames(m *Model) []string {
	var names []string
	for row := 0; row < m.VisibleCount(); row++ {
		_, entry, ok := m.Visible(row)
		if ok {
			names = append(names, entry.Name)
		}
	}
	return names
}

func TestModelLoad(t *testing.T) {
	m := NewModel(kcap.DefaultPassword)
	assert.False(t, m.Loaded())
	assert.Equal(t, "Ready", m.Status())
	assert.Equal(t, 0, m.TotalEntries())

	packPath := modelPack(t)
	require.NoError(t, m.LoadPack(packPath, "ModelPass"))
	defer m.Close()

	assert.True(t, m.Loaded())
	assert.Equal(t, packPath, m.PackPath())
	assert.Equal(t, "ModelPass", m.Password())
	assert.Equal(t, 4, m.TotalEntries())
	assert.Equal(t, []string{
		`Script\Stage02.txt`,
		`bgm\title.ogg`,
		`image\bg.bmp`,
		`script\stage01.txt`,
	}, visibleNames(m))

	_, _, ok := m.Visible(4)
	assert.False(t, ok)
}

func TestModelLoadFailureKeepsPack(t *testing.T) {
	m := NewModel(kcap.DefaultPassword)
	packPath := modelPack(t)
	require.NoError(t, m.LoadPack(packPath, "ModelPass"))
	defer m.Close()

	err := m.LoadPack(filepath.Join(t.TempDir(), "missing.Pack"), "ModelPass")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, m.Status(), "Failed to load file")
	assert.Equal(t, packPath, m.PackPath())
	assert.Equal(t, 4, m.TotalEntries())
}

func TestModelSearch(t *testing.T) {
	m := NewModel(kcap.DefaultPassword)
	require.NoError(t, m.LoadPack(modelPack(t), "ModelPass"))
	defer m.Close()

	m.SetSearchQuery("STAGE")
	assert.Equal(t, "STAGE", m.SearchQuery())
	assert.Equal(t, []string{`Script\Stage02.txt`, `script\stage01.txt`}, visibleNames(m))

	m.SetSearchQuery(`e\b`)
	assert.Equal(t, []string{`image\bg.bmp`}, visibleNames(m))

	m.SetSearchQuery("(")
	assert.Empty(t, visibleNames(m))

	m.SetSearchQuery("")
	assert.Equal(t, 4, m.VisibleCount())
}

func TestModelSelectAndExtract(t *testing.T) {
	m := NewModel(kcap.DefaultPassword)
	require.NoError(t, m.LoadPack(modelPack(t), "ModelPass"))
	defer m.Close()

	out := filepath.Join(t.TempDir(), "out.txt")
	assert.ErrorIs(t, m.ExtractSelected(out), kcap.ErrOutOfRange)

	m.SetSearchQuery("stage01")
	require.True(t, m.Select(0))
	index, entry, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, `script\stage01.txt`, entry.Name)
	assert.True(t, entry.Encrypted)

	require.NoError(t, m.ExtractSelected(out))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "stage one!", string(got))

	assert.Len(t, got, int(entry.Size))
	assert.Equal(t, 3, index)

	m.SetSearchQuery("")
	_, _, ok = m.Selected()
	assert.False(t, ok, "changing the filter clears the selection")

	assert.False(t, m.Select(10))
	_, _, ok = m.Selected()
	assert.False(t, ok)
}

func TestModelClose(t *testing.T) {
	m := NewModel(kcap.DefaultPassword)
	require.NoError(t, m.Close())

	require.NoError(t, m.LoadPack(modelPack(t), "ModelPass"))
	require.NoError(t, m.Close())
	assert.False(t, m.Loaded())
	assert.Equal(t, 0, m.VisibleCount())

	m.SetOutputDir("somewhere")
	assert.Equal(t, "somewhere", m.OutputDir())
}
