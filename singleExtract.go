package main

import (
	"fmt"
	"os"
	"path/filepath"

	"PackTools/kcap"
)

// extractEntryTo writes entry index of pack to outputPath, creating the parent
// directories as needed
func extractEntryTo(pack *kcap.Archive, index int, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", outputPath, err)
	}

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", outputPath, err)
	}
	if err := pack.WriteEntryTo(index, out); err != nil {
		out.Close()
		return fmt.Errorf("unable to write %s: %w", outputPath, err)
	}
	return out.Close()
}

// extractSingleFile extracts a single entry from the pack to a specified path
func extractSingleFile(packPath string, index int, outputPath, password string) error {
	pack, err := kcap.Open(packPath, password)
	if err != nil {
		return err
	}
	defer pack.Close()

	if index < 0 || index >= pack.Len() {
		return fmt.Errorf("invalid entry index %d (valid range: 0-%d): %w", index, pack.Len()-1, kcap.ErrOutOfRange)
	}

	if err := extractEntryTo(pack, index, outputPath); err != nil {
		return err
	}
	fmt.Printf("Extracted %s -> %s\n", pack.Entries[index].Name, outputPath)
	return nil
}
