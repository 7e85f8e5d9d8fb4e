package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"PackTools/kcap"
)

// listPack prints the directory of a pack
func listPack(packPath, password string) error {
	pack, err := kcap.Open(packPath, password)
	if err != nil {
		return err
	}
	defer pack.Close()

	for i, entry := range pack.Entries {
		fmt.Printf("   index: %d, offset: %d, size: %d, encrypted: %t, name: %s\n",
			i, entry.Offset, entry.Size, entry.Encrypted, entry.Name)
	}
	return nil
}

// entryPath maps a pack entry name to a path below outDir. Both separators
// are accepted in names; names leaving outDir are rejected.
func entryPath(outDir, name string) (string, error) {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '\\' || r == '/' })
	if len(parts) == 0 {
		return "", errors.Wrapf(kcap.ErrFormat, "empty entry name %q", name)
	}
	for _, p := range parts {
		if p == "." || p == ".." || strings.ContainsRune(p, ':') {
			return "", errors.Wrapf(kcap.ErrFormat, "entry name %q escapes the output directory", name)
		}
	}
	return filepath.Join(append([]string{outDir}, parts...)...), nil
}

// unpackPack extracts every entry whose name matches pattern (all entries if
// pattern is empty) into outDir. Files extracted before a failure are kept.
func unpackPack(packPath, outDir, password, pattern string, verbose bool) error {
	fmt.Printf("Unpack %s\n", packPath)
	fmt.Printf("    to %s\n", outDir)

	var regex *regexp.Regexp
	if pattern != "" {
		var err error
		if regex, err = regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
	}

	pack, err := kcap.Open(packPath, password)
	if err != nil {
		return err
	}
	defer pack.Close()

	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return fmt.Errorf("error creating extraction directory %s: %w", outDir, err)
	}

	extracted := 0
	for i, entry := range pack.Entries {
		if regex != nil && !regex.MatchString(entry.Name) {
			continue
		}
		outputPath, err := entryPath(outDir, entry.Name)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if verbose {
			fmt.Printf("Extracting %s -> %s\n", entry.Name, outputPath)
		}
		if err := extractEntryTo(pack, i, outputPath); err != nil {
			return err
		}
		extracted++
	}

	fmt.Printf("Extracted %d of %d entries\n", extracted, pack.Len())
	return nil
}

// packDirectory stores every file below dir in a new pack at outPath. Entry
// names are the paths relative to dir joined with sep. With an empty password
// the payloads are stored unencrypted.
func packDirectory(dir, outPath, password, sep string, verbose bool) error {
	fmt.Printf("Pack %s\n", dir)
	fmt.Printf("  to %s\n", outPath)

	sources, err := collectSources(dir, sep)
	if err != nil {
		return err
	}

	w := kcap.NewWriter()
	for _, src := range sources {
		if verbose {
			fmt.Printf("Packing %s -> %s\n", src.path, src.name)
		}
		if err := w.Add(src.path, src.name); err != nil {
			return err
		}
	}

	var options []kcap.WriteOption
	if password != "" {
		options = append(options, kcap.WithPassword(password))
	}
	if err := w.WriteFile(outPath, options...); err != nil {
		return fmt.Errorf("unable to write %s: %w", outPath, err)
	}

	fmt.Printf("Packed %d files into %s\n", w.Len(), outPath)
	return nil
}

// defaultUnpackDir is <dir of pack>/<pack name without extension>
func defaultUnpackDir(packPath string) string {
	base := filepath.Base(packPath)
	return filepath.Join(filepath.Dir(packPath), strings.TrimSuffix(base, filepath.Ext(base)))
}

// defaultPackPath is <parent of dir>/<dir name>.Pack
func defaultPackPath(dir string) string {
	dir = filepath.Clean(dir)
	return filepath.Join(filepath.Dir(dir), filepath.Base(dir)+".Pack")
}
