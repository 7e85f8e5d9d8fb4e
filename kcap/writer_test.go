package kcap

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutOrdersBySize(t *testing.T) {
	w := NewWriter()
	w.AddBytes("medium", make([]byte, 300))
	w.AddBytes("small", make([]byte, 10))
	w.AddBytes("large", make([]byte, 5000))

	entries := w.Layout()
	require.Len(t, entries, 3)

	names := []string{entries[0].Name, entries[1].Name, entries[2].Name}
	assert.Equal(t, []string{"small", "medium", "large"}, names)

	offset := uint64(headerSize + 3*recordSize)
	assert.Equal(t, uint64(8+3*84), offset)
	for _, e := range entries {
		assert.Equal(t, offset, e.Offset, "offset of %s", e.Name)
		offset += e.Size
	}
}

func TestLayoutIsStable(t *testing.T) {
	w := NewWriter()
	w.AddBytes("b", []byte("xx"))
	w.AddBytes("a", []byte("yy"))
	w.AddBytes("c", []byte("z"))

	entries := w.Layout()
	assert.Equal(t, "c", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
	assert.Equal(t, "a", entries[2].Name)
}

func TestWriteLayout(t *testing.T) {
	w := NewWriter()
	w.AddBytes(`data\b.bin`, []byte("bbbb"))
	w.AddBytes(`a.txt`, []byte("a"))

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf))
	b := buf.Bytes()

	require.Len(t, b, headerSize+2*recordSize+5)
	assert.Equal(t, "KCAP", string(b[:4]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(b[4:]))

	rec := b[headerSize : headerSize+recordSize]
	assert.Equal(t, "a.txt", string(bytes.TrimRight(rec[:nameSize], "\x00")))
	assert.Equal(t, Checksum(rec[:nameSize]), binary.LittleEndian.Uint32(rec[64:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(rec[68:]))
	assert.Equal(t, uint32(headerSize+2*recordSize), binary.LittleEndian.Uint32(rec[72:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(rec[76:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(rec[80:]))

	assert.Equal(t, "abbbb", string(b[headerSize+2*recordSize:]))
}

func TestWriteEncryptsEveryEntry(t *testing.T) {
	w := NewWriter()
	w.AddBytes("one", []byte("first payload"))
	w.AddBytes("two", []byte("second payload"))

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, WithPassword(DefaultPassword)))
	b := buf.Bytes()

	table := KeyTableFor(DefaultPassword)
	for i, e := range w.Layout() {
		rec := b[headerSize+i*recordSize:]
		assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(rec[80:]), "flag of %s", e.Name)
		stored := b[e.Offset : e.Offset+e.Size]
		assert.Equal(t, table[:e.Size], xorBytes(stored, []byte(map[string]string{
			"one": "first payload",
			"two": "second payload",
		}[e.Name])))
	}
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func TestWriteNameTooLong(t *testing.T) {
	w := NewWriter()
	w.AddBytes(strings.Repeat("n", nameSize+1), []byte("x"))
	err := w.Write(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrEncoding)

	w = NewWriter()
	w.AddBytes(strings.Repeat("あ", nameSize/2+1), []byte("x"))
	assert.ErrorIs(t, w.Write(&bytes.Buffer{}), ErrEncoding)

	w = NewWriter()
	w.AddBytes(strings.Repeat("n", nameSize), []byte("x"))
	assert.NoError(t, w.Write(&bytes.Buffer{}))
}

func TestAdd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("on disk"), 0644))

	w := NewWriter()
	require.NoError(t, w.Add(path, "file.bin"))
	assert.Error(t, w.Add(filepath.Join(dir, "missing"), "missing"))
	assert.Error(t, w.Add(dir, "dir"))
	require.Equal(t, 1, w.Len())

	out := filepath.Join(dir, "out.Pack")
	require.NoError(t, w.WriteFile(out))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(b[headerSize+recordSize:]))
}

func TestWriteSourceShrank(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0644))

	w := NewWriter()
	require.NoError(t, w.Add(path, "file.bin"))
	require.NoError(t, os.WriteFile(path, []byte("01"), 0644))
	assert.Error(t, w.Write(&bytes.Buffer{}))
}
