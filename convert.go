package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"PackTools/fvt"
)

// recordFormat picks the document format from the file extension
func recordFormat(path string, fallback fvt.Format) fvt.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return fvt.YAML
	case ".json":
		return fvt.JSON
	}
	return fallback
}

// swapExt replaces the extension of path
func swapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// fvtDecodeFile converts a binary .FVT record into a JSON or YAML document
func fvtDecodeFile(from, to string, format fvt.Format) error {
	fmt.Printf("Decode from %s\n", from)
	fmt.Printf("         to %s\n", to)

	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", from, err)
	}
	defer in.Close()

	rec, err := fvt.Decode(in)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", from, err)
	}

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", to, err)
	}
	if err := fvt.Marshal(out, rec, recordFormat(to, format)); err != nil {
		out.Close()
		return fmt.Errorf("unable to write %s: %w", to, err)
	}
	return out.Close()
}

// fvtEncodeFile converts a JSON or YAML document back into a binary .FVT record
func fvtEncodeFile(from, to string) error {
	fmt.Printf("Encode from %s\n", from)
	fmt.Printf("         to %s\n", to)

	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", from, err)
	}
	defer in.Close()

	rec, err := fvt.Unmarshal(in, recordFormat(from, fvt.JSON))
	if err != nil {
		return fmt.Errorf("error reading %s: %w", from, err)
	}

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", to, err)
	}
	if err := fvt.Encode(out, rec); err != nil {
		out.Close()
		return fmt.Errorf("unable to write %s: %w", to, err)
	}
	return out.Close()
}
