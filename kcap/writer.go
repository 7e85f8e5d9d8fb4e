package kcap

import (
	"bufio"
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"io"
	"log"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// PendingEntry is a file queued for writing. Offset is zero until Layout runs.
type PendingEntry struct {
	Name   string
	Size   uint64
	Offset uint64

	open func() (io.ReadCloser, error)
}

// Writer assembles a pack from files on disk or in memory.
type Writer struct {
	entries []*PendingEntry
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{entries: make([]*PendingEntry, 0, 64)}
}

// Add queues the file at sourcePath under the logical name. The file must be
// readable now; its contents are read when the pack is written.
func (w *Writer) Add(sourcePath, name string) error {
	f, err := os.Open(sourcePath)
	if err != nil {
		return errors.Wrapf(err, "add %s", name)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "add %s", name)
	}
	if fi.IsDir() {
		return errors.Errorf("add %s: %s is a directory", name, sourcePath)
	}

	w.entries = append(w.entries, &PendingEntry{
		Name: name,
		Size: uint64(fi.Size()),
		open: func() (io.ReadCloser, error) { return os.Open(sourcePath) },
	})
	return nil
}

// AddBytes queues data under the logical name.
func (w *Writer) AddBytes(name string, data []byte) {
	w.entries = append(w.entries, &PendingEntry{
		Name: name,
		Size: uint64(len(data)),
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	})
}

// Len returns the number of queued entries.
func (w *Writer) Len() int { return len(w.entries) }

// Layout orders the entries by ascending size, keeping insertion order for
// equal sizes, and assigns contiguous payload offsets after the directory.
// A pack read back therefore lists its entries in this order.
func (w *Writer) Layout() []PendingEntry {
	sort.SliceStable(w.entries, func(i, j int) bool {
		return w.entries[i].Size < w.entries[j].Size
	})

	offset := uint64(headerSize) + uint64(len(w.entries))*recordSize
	out := make([]PendingEntry, len(w.entries))
	for i, e := range w.entries {
		e.Offset = offset
		offset += e.Size
		out[i] = *e
	}
	return out
}

type writeOptions struct {
	table *KeyTable
}

// WriteOption configures Writer.Write.
type WriteOption func(*writeOptions)

// WithPassword encrypts every payload with the key table of password and sets
// the encrypted flag on every entry.
func WithPassword(password string) WriteOption {
	return func(o *writeOptions) {
		o.table = KeyTableFor(password)
	}
}

// WithKeyTable is WithPassword for a table the caller already holds.
func WithKeyTable(t *KeyTable) WriteOption {
	return func(o *writeOptions) {
		o.table = t
	}
}

// Write lays out the entries and serializes the pack to out. Without
// WithPassword payloads are stored as is.
func (w *Writer) Write(out io.Writer, options ...WriteOption) error {
	var opts writeOptions
	for _, o := range options {
		o(&opts)
	}

	if len(w.entries) > math.MaxInt32 {
		return errors.Errorf("too many entries: %d", len(w.entries))
	}
	w.Layout()
	if n := len(w.entries); n > 0 {
		last := w.entries[n-1]
		if last.Offset+last.Size > math.MaxUint32 {
			return errors.Errorf("pack would be %d bytes, the format is limited to 4 GiB", last.Offset+last.Size)
		}
	}

	bw := bufio.NewWriterSize(out, 64*1024)

	var head [headerSize]byte
	copy(head[:], magic)
	binary.LittleEndian.PutUint32(head[4:], uint32(len(w.entries)))
	if _, err := bw.Write(head[:]); err != nil {
		return errors.Wrap(err, "write header")
	}

	var encrypted uint32
	if opts.table != nil {
		encrypted = 1
	}

	record := make([]byte, recordSize)
	for i, e := range w.entries {
		clear(record)
		name, lossy := EncodeLegacy(e.Name)
		if lossy {
			log.Printf("[kcap] entry name %q has characters outside Shift-JIS", e.Name)
		}
		if len(name) > nameSize {
			return errors.Wrapf(ErrEncoding, "entry %d: name %q is %d bytes, limit is %d",
				i, e.Name, len(name), nameSize)
		}
		copy(record, name)
		binary.LittleEndian.PutUint32(record[64:], Checksum(record[:nameSize]))
		binary.LittleEndian.PutUint32(record[72:], uint32(e.Offset))
		binary.LittleEndian.PutUint32(record[76:], uint32(e.Size))
		binary.LittleEndian.PutUint32(record[80:], encrypted)
		if _, err := bw.Write(record); err != nil {
			return errors.Wrapf(err, "write directory entry %d", i)
		}
	}

	for i, e := range w.entries {
		if err := writePayload(bw, e, opts.table); err != nil {
			return errors.Wrapf(err, "write entry %d (%s) at offset %d", i, e.Name, e.Offset)
		}
	}

	return errors.Wrap(bw.Flush(), "flush pack")
}

func writePayload(out io.Writer, e *PendingEntry, table *KeyTable) error {
	src, err := e.open()
	if err != nil {
		return err
	}
	defer src.Close()

	if table != nil {
		out = cipher.StreamWriter{S: NewStream(table), W: out}
	}
	if _, err := io.CopyN(out, src, int64(e.Size)); err != nil {
		if err == io.EOF {
			return errors.Errorf("source shrank below %d bytes", e.Size)
		}
		return err
	}
	return nil
}

// WriteFile writes the pack to path, replacing any existing file.
func (w *Writer) WriteFile(path string, options ...WriteOption) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "create pack")
	}
	if err := w.Write(f, options...); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close pack")
}
