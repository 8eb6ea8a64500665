package repl

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

const (
	baseHistory = "history.utf8"
	maxHistory  = 1000
)

// History file lines are prefixed with the mode they were entered in.
const (
	evalMarker = "E:"
	ctrlMarker = "C:"
)

// HistoryEntry is one submitted line and the mode it was submitted in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

func (e HistoryEntry) String() string {
	if e.Mode == modeCtrl {
		return ctrlMarker + e.Line
	}

	return evalMarker + e.Line
}

func parseHistoryEntry(s string) HistoryEntry {
	if rest, ok := strings.CutPrefix(s, ctrlMarker); ok {
		return HistoryEntry{Line: rest, Mode: modeCtrl}
	}

	return HistoryEntry{Line: strings.TrimPrefix(s, evalMarker), Mode: modeEval}
}

// History is the list of submitted lines, oldest first. A line is kept at
// most once per mode; resubmitting moves it to the end.
type History struct {
	mu      sync.RWMutex
	path    string // empty for an in-memory history
	entries []HistoryEntry
}

func NewHistory(path string) *History { return &History{path: path} }

// Load replaces the entries with the contents of the history file. A missing
// file is an empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = h.entries[:0]

	if h.path == "" {
		return nil
	}

	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	for s := range strings.Lines(string(data)) {
		if s = strings.TrimSpace(s); s != "" {
			h.entries = append(h.entries, parseHistoryEntry(s))
		}
	}

	h.entries = keepNewest(h.entries)

	return nil
}

// Add records line in mode and saves the history. Blank and multi-line
// input is ignored.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.ContainsAny(line, "\r\n") {
		return nil
	}

	e := HistoryEntry{Line: line, Mode: mode}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == e {
		return nil
	}

	h.entries = slices.DeleteFunc(h.entries, func(x HistoryEntry) bool { return x == e })
	h.entries = keepNewest(append(h.entries, e))

	return h.save()
}

// Entry returns the entry at index i, where 0 is the oldest.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all entries.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

func keepNewest(entries []HistoryEntry) []HistoryEntry {
	if n := len(entries) - maxHistory; n > 0 {
		return slices.Delete(entries, 0, n)
	}

	return entries
}

// save replaces the history file through a temporary file in the same
// directory. h.mu must be held.
func (h *History) save() error {
	if h.path == "" {
		return nil
	}

	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(dir, baseHistory+".*")
	if err != nil {
		return err
	}

	_, err = tmp.WriteString(b.String())
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err == nil {
		err = os.Rename(tmp.Name(), h.path)
	}

	if err != nil {
		_ = os.Remove(tmp.Name())
	}

	return err
}
