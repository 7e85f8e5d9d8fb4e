package kcap

import (
	"log"
	"sync"
	"unicode/utf8"
)

const (
	// KeyTableSize is the length of a key table; payload byte i is combined
	// with table[i % KeyTableSize].
	KeyTableSize = 0x10000

	// DefaultPassword unlocks the packs shipped with the Densha de D games.
	DefaultPassword = "PackPass"

	// fallbackPassword replaces passwords shorter than minPasswordLength.
	fallbackPassword  = "Selene.Default.Password"
	minPasswordLength = 8
)

// KeyTable is the XOR table derived from a password. Tables returned by this
// package are shared and must not be modified.
type KeyTable [KeyTableSize]byte

// BuildKeyTable derives the key table for password. Passwords shorter than
// eight characters all map to the engine's built-in fallback password.
func BuildKeyTable(password string) *KeyTable {
	if utf8.RuneCountInString(password) < minPasswordLength {
		password = fallbackPassword
	}
	pass, lossy := EncodeLegacy(password)
	if lossy {
		log.Printf("[kcap] password contains characters outside Shift-JIS, key table may not match the engine")
	}

	rng := NewKeyStream(int32(Checksum(pass)))
	table := new(KeyTable)
	for i := range table {
		mask := byte(rng.Next() >> 16)
		table[i] = pass[i%len(pass)] ^ mask
	}
	return table
}

var keyTables sync.Map // password -> *KeyTable

// KeyTableFor returns the key table for password, building it on first use.
func KeyTableFor(password string) *KeyTable {
	if t, ok := keyTables.Load(password); ok {
		return t.(*KeyTable)
	}
	t, _ := keyTables.LoadOrStore(password, BuildKeyTable(password))
	return t.(*KeyTable)
}
