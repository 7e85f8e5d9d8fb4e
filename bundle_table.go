package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// packSource is a file on disk and the entry name it gets in the pack
type packSource struct {
	path string
	name string
}

// collectSources walks dir recursively and returns every regular file with its
// entry name, sorted by name so repeated packs of the same tree are identical.
func collectSources(dir, sep string) ([]packSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var sources []packSource
	if err := collectDir(dir, "", sep, &sources); err != nil {
		return nil, err
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].name < sources[j].name
	})
	return sources, nil
}

// collectDir processes directories recursively
func collectDir(dirPath, relName, sep string, sources *[]packSource) error {
	fileInfos, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("error reading directory %s: %w", dirPath, err)
	}

	for _, fileInfo := range fileInfos {
		fullPath := filepath.Join(dirPath, fileInfo.Name())
		name := fileInfo.Name()
		if relName != "" {
			name = strings.Join([]string{relName, fileInfo.Name()}, sep)
		}

		if fileInfo.IsDir() {
			if err := collectDir(fullPath, name, sep, sources); err != nil {
				return err
			}
			continue
		}
		if !fileInfo.Type().IsRegular() {
			fmt.Printf("Skipping %s: not a regular file\n", fullPath)
			continue
		}
		*sources = append(*sources, packSource{path: fullPath, name: name})
	}
	return nil
}
