package main

import (
	"regexp"
	"sort"
	"sync"

	"PackTools/kcap"
)

// Model holds the state behind the GUI: the loaded pack and the filtered view
// of its entries
type Model struct {
	mu          sync.Mutex
	packPath    string
	password    string
	pack        *kcap.Archive
	visible     []int
	searchQuery string
	selected    int
	outputDir   string
	status      string
}

// NewModel creates a model that opens packs with password
func NewModel(password string) *Model {
	return &Model{
		password: password,
		selected: -1,
	}
}

// LoadPack opens a pack and replaces the current one
func (m *Model) LoadPack(path, password string) error {
	pack, err := kcap.Open(path, password)
	if err != nil {
		m.SetStatus("Failed to load file: " + err.Error())
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pack != nil {
		m.pack.Close()
	}
	m.pack = pack
	m.packPath = path
	m.password = password
	m.selected = -1
	m.refilter()
	m.status = "File loaded successfully"
	return nil
}

// Close releases the loaded pack
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pack == nil {
		return nil
	}
	err := m.pack.Close()
	m.pack = nil
	m.visible = nil
	m.selected = -1
	return err
}

func (m *Model) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pack != nil
}

func (m *Model) PackPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.packPath
}

func (m *Model) Password() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.password
}

// TotalEntries is the number of entries in the pack, ignoring the filter
func (m *Model) TotalEntries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pack == nil {
		return 0
	}
	return m.pack.Len()
}

// VisibleCount is the number of entries passing the search filter
func (m *Model) VisibleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visible)
}

// Visible returns the pack index and entry at position row of the filtered list
func (m *Model) Visible(row int) (int, kcap.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row < 0 || row >= len(m.visible) {
		return -1, kcap.Entry{}, false
	}
	index := m.visible[row]
	return index, m.pack.Entries[index], true
}

func (m *Model) SearchQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchQuery
}

// SetSearchQuery filters the entries by a case-insensitive substring of the
// name and clears the selection
func (m *Model) SetSearchQuery(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchQuery = query
	m.selected = -1
	m.refilter()
}

// refilter rebuilds the visible list sorted by name. Caller holds mu.
func (m *Model) refilter() {
	m.visible = m.visible[:0]
	if m.pack == nil {
		return
	}
	regex := regexp.MustCompile("(?i)" + regexp.QuoteMeta(m.searchQuery))
	for i, entry := range m.pack.Entries {
		if regex.MatchString(entry.Name) {
			m.visible = append(m.visible, i)
		}
	}
	entries := m.pack.Entries
	sort.SliceStable(m.visible, func(i, j int) bool {
		return entries[m.visible[i]].Name < entries[m.visible[j]].Name
	})
}

// Select marks the entry at position row of the filtered list
func (m *Model) Select(row int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row < 0 || row >= len(m.visible) {
		m.selected = -1
		return false
	}
	m.selected = m.visible[row]
	return true
}

// Selected returns the pack index of the selected entry
func (m *Model) Selected() (int, kcap.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pack == nil || m.selected < 0 {
		return -1, kcap.Entry{}, false
	}
	return m.selected, m.pack.Entries[m.selected], true
}

// ExtractSelected writes the selected entry to outputPath
func (m *Model) ExtractSelected(outputPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pack == nil || m.selected < 0 {
		return kcap.ErrOutOfRange
	}
	return extractEntryTo(m.pack, m.selected, outputPath)
}

func (m *Model) OutputDir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outputDir
}

func (m *Model) SetOutputDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputDir = dir
}

func (m *Model) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == "" {
		return "Ready"
	}
	return m.status
}

func (m *Model) SetStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}
