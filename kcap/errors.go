package kcap

import "github.com/pkg/errors"

// Error kinds. Every error returned by this package wraps one of these or an
// underlying I/O error, so callers can classify failures with errors.Is.
var (
	// ErrFormat reports a malformed or truncated pack.
	ErrFormat = errors.New("kcap: malformed pack")
	// ErrOutOfRange reports an entry index outside the directory.
	ErrOutOfRange = errors.New("kcap: entry index out of range")
	// ErrEncoding reports text that does not fit its fixed-size field.
	ErrEncoding = errors.New("kcap: legacy encoding error")
)
