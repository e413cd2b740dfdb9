// Package dictionary holds the word entries a Markov chain is built from,
// along with their CSV and SQLite representations.
package dictionary

import (
	"sort"
	"strings"
)

// Entry is one unique dictionary word with every definition collected for it.
type Entry struct {
	Name        string   `json:"name"`
	Definitions []string `json:"definitions"`
	Type        string   `json:"type,omitempty"`
}

// Dictionary is a set of entries keyed by normalized name.
type Dictionary struct {
	entries map[string]Entry
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{entries: make(map[string]Entry)}
}

// NormalizeName trims and lowercases a word so it can be used as a key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Add records one definition for name. A name seen before gets the
// definition appended to its existing ones.
func (d *Dictionary) Add(name, definition, typ string) {
	d.Put(Entry{Name: name, Definitions: []string{definition}, Type: typ})
}

// Put merges e into the dictionary. The merged entry is assembled in full
// before it replaces the stored one, so a half-merged entry is never visible.
// The latest non-empty type wins.
func (d *Dictionary) Put(e Entry) {
	key := NormalizeName(e.Name)
	if key == "" {
		return
	}

	merged := Entry{Name: key, Type: e.Type}
	if old, ok := d.entries[key]; ok {
		merged.Definitions = make([]string, 0, len(old.Definitions)+len(e.Definitions))
		merged.Definitions = append(merged.Definitions, old.Definitions...)
		if merged.Type == "" {
			merged.Type = old.Type
		}
	}
	merged.Definitions = append(merged.Definitions, e.Definitions...)

	d.entries[key] = merged
}

// Get returns a copy of the entry for name.
func (d *Dictionary) Get(name string) (Entry, bool) {
	e, ok := d.entries[NormalizeName(name)]
	if !ok {
		return Entry{}, false
	}
	return copyEntry(e), true
}

// Len returns the number of unique entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Names returns every entry name in sorted order.
func (d *Dictionary) Names() []string {
	names := make([]string, 0, len(d.entries))
	for name := range d.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns copies of every entry, sorted by name.
func (d *Dictionary) Entries() []Entry {
	names := d.Names()
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		out = append(out, copyEntry(d.entries[name]))
	}
	return out
}

// Definitions concatenates the definitions of every entry. Entries are taken
// in name order and each entry's definitions keep the order they were added in.
func (d *Dictionary) Definitions() []string {
	var defs []string
	for _, name := range d.Names() {
		defs = append(defs, d.entries[name].Definitions...)
	}
	return defs
}

// DefinitionCount returns the total number of definitions over all entries.
func (d *Dictionary) DefinitionCount() int {
	var n int
	for _, e := range d.entries {
		n += len(e.Definitions)
	}
	return n
}

func copyEntry(e Entry) Entry {
	defs := make([]string, len(e.Definitions))
	copy(defs, e.Definitions)
	e.Definitions = defs
	return e
}
