package kcap

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
)

// On-disk layout, little-endian throughout.
const (
	magic      = "KCAP"
	headerSize = 8  // magic + entry count
	nameSize   = 64 // null-padded Shift-JIS name
	recordSize = nameSize + 4 + 4 + 4 + 4 + 4
)

// Entry is one directory record of a pack.
type Entry struct {
	Name      string
	Checksum  uint32 // stored but never verified
	Offset    uint32
	Size      uint32
	Encrypted bool
}

func (e *Entry) fromBuf(b []byte) {
	name, lossy := DecodeLegacy(bytes.TrimRight(b[:nameSize], "\x00"))
	if lossy {
		log.Printf("[kcap] entry name %q is not valid Shift-JIS", name)
	}
	e.Name = name
	e.Checksum = binary.LittleEndian.Uint32(b[64:])
	// b[68:72] is reserved
	e.Offset = binary.LittleEndian.Uint32(b[72:])
	e.Size = binary.LittleEndian.Uint32(b[76:])
	e.Encrypted = binary.LittleEndian.Uint32(b[80:]) != 0
}

// Archive is an opened pack. The directory is parsed on open; payloads are
// read on demand and may be extracted any number of times in any order.
type Archive struct {
	// Entries is the directory in on-disk order.
	Entries []Entry

	r      io.ReaderAt
	size   int64
	table  *KeyTable
	closer io.Closer
}

// Open opens the pack at path. Encrypted entries are decrypted with the key
// table of password.
func Open(path, password string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open pack")
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat pack")
	}
	a, err := NewArchive(f, fi.Size(), KeyTableFor(password))
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "open pack %s", path)
	}
	a.closer = f
	return a, nil
}

func readFull(r io.Reader, b []byte, what string) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.Wrapf(ErrFormat, "%s: truncated", what)
		}
		return errors.Wrapf(err, "read %s", what)
	}
	return nil
}

// NewArchive parses the pack held in the first size bytes of r. A nil table
// leaves encrypted payloads as stored.
func NewArchive(r io.ReaderAt, size int64, table *KeyTable) (*Archive, error) {
	sr := io.NewSectionReader(r, 0, size)

	var head [headerSize]byte
	if err := readFull(sr, head[:4], "magic"); err != nil {
		return nil, err
	}
	if string(head[:4]) != magic {
		return nil, errors.Wrapf(ErrFormat, "bad magic %q", head[:4])
	}
	if err := readFull(sr, head[4:], "entry count"); err != nil {
		return nil, err
	}

	count := int32(binary.LittleEndian.Uint32(head[4:]))
	if count < 0 {
		return nil, errors.Wrapf(ErrFormat, "negative entry count %d", count)
	}
	dirSize := int64(count) * recordSize
	if headerSize+dirSize > size {
		return nil, errors.Wrapf(ErrFormat, "directory of %d entries exceeds pack size %d", count, size)
	}

	dir := make([]byte, dirSize)
	if err := readFull(sr, dir, "directory"); err != nil {
		return nil, err
	}

	entries := make([]Entry, count)
	for i := range entries {
		e := &entries[i]
		e.fromBuf(dir[i*recordSize:])
		if int64(e.Offset)+int64(e.Size) > size {
			return nil, errors.Wrapf(ErrFormat, "entry %d (%s) spans [%d, %d) beyond pack size %d",
				i, e.Name, e.Offset, int64(e.Offset)+int64(e.Size), size)
		}
	}

	return &Archive{
		Entries: entries,
		r:       r,
		size:    size,
		table:   table,
	}, nil
}

// Len returns the number of entries.
func (a *Archive) Len() int { return len(a.Entries) }

// Lookup returns the index of the first entry called name.
func (a *Archive) Lookup(name string) (int, bool) {
	for i := range a.Entries {
		if a.Entries[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

func (a *Archive) entry(index int) (*Entry, error) {
	if index < 0 || index >= len(a.Entries) {
		return nil, errors.Wrapf(ErrOutOfRange, "entry %d of %d", index, len(a.Entries))
	}
	return &a.Entries[index], nil
}

func (a *Archive) stream(e *Entry) cipher.Stream {
	if !e.Encrypted || a.table == nil {
		return nil
	}
	return NewStream(a.table)
}

// ReadEntry returns the payload of entry index, decrypted if the entry is
// flagged as encrypted.
func (a *Archive) ReadEntry(index int) ([]byte, error) {
	e, err := a.entry(index)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, e.Size)
	if err := readFull(io.NewSectionReader(a.r, int64(e.Offset), int64(e.Size)), buf,
		"entry "+e.Name); err != nil {
		return nil, errors.Wrapf(err, "read entry %d at offset %d", index, e.Offset)
	}
	if s := a.stream(e); s != nil {
		s.XORKeyStream(buf, buf)
	}
	return buf, nil
}

// WriteEntryTo streams the payload of entry index to w.
func (a *Archive) WriteEntryTo(index int, w io.Writer) error {
	e, err := a.entry(index)
	if err != nil {
		return err
	}
	if s := a.stream(e); s != nil {
		w = cipher.StreamWriter{S: s, W: w}
	}
	n, err := io.Copy(w, io.NewSectionReader(a.r, int64(e.Offset), int64(e.Size)))
	if err != nil {
		return errors.Wrapf(err, "copy entry %d (%s)", index, e.Name)
	}
	if n != int64(e.Size) {
		return errors.Wrapf(ErrFormat, "entry %d (%s): copied %d of %d bytes", index, e.Name, n, e.Size)
	}
	return nil
}

// Close releases the underlying file of an archive returned by Open.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}
