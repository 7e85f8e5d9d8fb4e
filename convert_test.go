package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PackTools/fvt"
	"PackTools/kcap"
)

func TestRecordFormat(t *testing.T) {
	assert.Equal(t, fvt.YAML, recordFormat("a.yaml", fvt.JSON))
	assert.Equal(t, fvt.YAML, recordFormat("a.YML", fvt.JSON))
	assert.Equal(t, fvt.JSON, recordFormat("a.json", fvt.YAML))
	assert.Equal(t, fvt.YAML, recordFormat("a.txt", fvt.YAML))
	assert.Equal(t, fvt.JSON, recordFormat("noext", fvt.JSON))
}

func TestSwapExt(t *testing.T) {
	assert.Equal(t, "dir/line01.json", swapExt("dir/line01.FVT", ".json"))
	assert.Equal(t, "line01.FVT", swapExt("line01", ".FVT"))
	assert.Equal(t, "a.b.yaml", swapExt("a.b.c", ".yaml"))
}

func TestFvtFileRoundTrip(t *testing.T) {
	sjis, lossy := kcap.EncodeLegacy("いくぞ!")
	require.False(t, lossy)

	raw := []byte(fvt.TagD3)
	for _, v := range []uint32{100, 200, 300} {
		raw = binary.LittleEndian.AppendUint32(raw, v)
	}
	raw = append(raw, 4, byte(len(sjis)), 5)
	raw = append(raw, sjis...)

	for _, format := range []fvt.Format{fvt.JSON, fvt.YAML} {
		dir := t.TempDir()
		src := filepath.Join(dir, "line01.FVT")
		require.NoError(t, os.WriteFile(src, raw, 0644))

		doc := swapExt(src, "."+string(format))
		require.NoError(t, fvtDecodeFile(src, doc, fvt.JSON), format)

		in, err := os.Open(doc)
		require.NoError(t, err)
		rec, err := fvt.Unmarshal(in, format)
		in.Close()
		require.NoError(t, err, format)
		assert.Equal(t, "いくぞ!", rec.Text)
		assert.Equal(t, uint32(300), rec.U32Unknown2)

		back := filepath.Join(dir, "back.FVT")
		require.NoError(t, fvtEncodeFile(doc, back), format)
		got, err := os.ReadFile(back)
		require.NoError(t, err)
		assert.Equal(t, raw, got, format)
	}
}

func TestFvtDecodeFileErrors(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, fvtDecodeFile(filepath.Join(dir, "missing.FVT"), filepath.Join(dir, "x.json"), fvt.JSON), os.ErrNotExist)

	bad := filepath.Join(dir, "bad.FVT")
	require.NoError(t, os.WriteFile(bad, []byte("NOT_FVT"), 0644))
	assert.ErrorIs(t, fvtDecodeFile(bad, filepath.Join(dir, "bad.json"), fvt.JSON), kcap.ErrFormat)
}
