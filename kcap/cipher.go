package kcap

import "crypto/cipher"

// tableStream XORs data with a key table starting at entry position 0.
type tableStream struct {
	table *KeyTable
	pos   int
}

// NewStream returns a cipher.Stream that applies t from the first byte of an
// entry. Encryption and decryption are the same operation.
func NewStream(t *KeyTable) cipher.Stream {
	return &tableStream{table: t}
}

func (s *tableStream) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("kcap: output smaller than input")
	}
	for i, b := range src {
		dst[i] = b ^ s.table[s.pos]
		s.pos = (s.pos + 1) & (KeyTableSize - 1)
	}
}

// Apply returns data XORed with the table from position 0.
func (t *KeyTable) Apply(data []byte) []byte {
	out := make([]byte, len(data))
	NewStream(t).XORKeyStream(out, data)
	return out
}
