// Package fvt converts the subtitle records (.FVT) of the Densha de D games
// between their binary form and an editable JSON or YAML document.
//
// Three record shapes are known, selected by the second byte of the file:
//
//	'E' DEND_FVT  u32, u8, u8 text length, u8, text
//	'2' D2_FVT    u32, u32, u32, u8, u8 text length, u8, text
//	'3' D3_FVT    u32, u32, u32, u8, u8 text length, u8, text
//
// Integers are little-endian; text is Shift-JIS. Unknown fields are kept
// verbatim so a decode/encode round trip is byte-exact.
package fvt

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"log"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"PackTools/kcap"
)

// Record tags.
const (
	TagDenD = "DEND_FVT" // Lightning Stage
	TagD2   = "D2_FVT"   // Burning Stage
	TagD3   = "D3_FVT"   // Climax Stage, Rising Stage
)

// ErrUnknownFormat reports a discriminator byte or tag that names no known
// record shape. It wraps kcap.ErrFormat.
var ErrUnknownFormat = errors.Wrap(kcap.ErrFormat, "fvt: unknown record format")

// Record is the structured form of an .FVT file.
type Record struct {
	Tag         string `json:"tag" yaml:"tag"`
	U32Unknown0 uint32 `json:"u32_unknown0" yaml:"u32_unknown0"`
	U32Unknown1 uint32 `json:"u32_unknown1" yaml:"u32_unknown1"`
	U32Unknown2 uint32 `json:"u32_unknown2" yaml:"u32_unknown2"`
	U32Unknown3 uint32 `json:"u32_unknown3" yaml:"u32_unknown3"`
	U8Unknown0  uint8  `json:"u8_unknown0" yaml:"u8_unknown0"`
	U8Unknown1  uint8  `json:"u8_unknown1" yaml:"u8_unknown1"`
	Text        string `json:"text" yaml:"text"`
}

// wide reports whether the tag carries three leading integers.
func wide(tag string) (bool, error) {
	switch tag {
	case TagDenD:
		return false, nil
	case TagD2, TagD3:
		return true, nil
	}
	return false, errors.Wrapf(ErrUnknownFormat, "tag %q", tag)
}

func tagFor(b byte) (string, error) {
	switch b {
	case 'E':
		return TagDenD, nil
	case '2':
		return TagD2, nil
	case '3':
		return TagD3, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "discriminator 0x%02x", b)
}

func readFull(r io.Reader, b []byte, what string) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.Wrapf(kcap.ErrFormat, "fvt %s: truncated", what)
		}
		return errors.Wrapf(err, "read fvt %s", what)
	}
	return nil
}

// Decode reads one binary record.
func Decode(r io.Reader) (*Record, error) {
	var head [2]byte
	if err := readFull(r, head[:], "tag"); err != nil {
		return nil, err
	}
	tag, err := tagFor(head[1])
	if err != nil {
		return nil, err
	}
	isWide, _ := wide(tag)

	// rest of the tag, then the fixed fields up to and including the trailing u8
	fixed := 4 + 3
	if isWide {
		fixed = 12 + 3
	}
	b := make([]byte, len(tag)-2+fixed)
	if err := readFull(r, b, "header"); err != nil {
		return nil, err
	}
	b = b[len(tag)-2:]

	rec := &Record{Tag: tag}
	rec.U32Unknown0 = binary.LittleEndian.Uint32(b)
	b = b[4:]
	if isWide {
		rec.U32Unknown1 = binary.LittleEndian.Uint32(b)
		rec.U32Unknown2 = binary.LittleEndian.Uint32(b[4:])
		b = b[8:]
	}
	rec.U8Unknown0 = b[0]
	textLen := int(b[1])
	rec.U8Unknown1 = b[2]

	text := make([]byte, textLen)
	if err := readFull(r, text, "text"); err != nil {
		return nil, err
	}
	s, lossy := kcap.DecodeLegacy(text)
	if lossy {
		log.Printf("[fvt] text is not valid Shift-JIS: %q", s)
	}
	rec.Text = s
	return rec, nil
}

// Encode writes rec in its binary form.
func Encode(w io.Writer, rec *Record) error {
	isWide, err := wide(rec.Tag)
	if err != nil {
		return err
	}
	text, lossy := kcap.EncodeLegacy(rec.Text)
	if lossy {
		log.Printf("[fvt] text has characters outside Shift-JIS: %q", rec.Text)
	}
	if len(text) > 0xFF {
		return errors.Wrapf(kcap.ErrEncoding, "text is %d bytes, limit is 255", len(text))
	}

	b := make([]byte, 0, len(rec.Tag)+15+len(text))
	b = append(b, rec.Tag...)
	b = binary.LittleEndian.AppendUint32(b, rec.U32Unknown0)
	if isWide {
		b = binary.LittleEndian.AppendUint32(b, rec.U32Unknown1)
		b = binary.LittleEndian.AppendUint32(b, rec.U32Unknown2)
	}
	b = append(b, rec.U8Unknown0, byte(len(text)), rec.U8Unknown1)
	b = append(b, text...)

	_, err = w.Write(b)
	return errors.Wrap(err, "write fvt")
}

// Format selects the document form of a record.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Marshal writes rec as a document.
func Marshal(w io.Writer, rec *Record, format Format) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return errors.Wrap(enc.Close(), "encode yaml")
	case JSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return errors.Wrap(enc.Encode(rec), "encode json")
	}
	return errors.Errorf("unknown document format %q", format)
}

// Unmarshal reads a document written by Marshal.
func Unmarshal(r io.Reader, format Format) (*Record, error) {
	rec := &Record{}
	switch format {
	case YAML:
		if err := yaml.NewDecoder(r).Decode(rec); err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}
	case JSON, "":
		if err := json.NewDecoder(r).Decode(rec); err != nil {
			return nil, errors.Wrap(err, "decode json")
		}
	default:
		return nil, errors.Errorf("unknown document format %q", format)
	}
	return rec, nil
}
