package dictionary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required csv column")

const (
	columnWord       = "word"
	columnDefinition = "definition"
	columnType       = "type"
)

// CSVOptions controls how rows are normalized while reading.
type CSVOptions struct {
	// Lowercase lowercases definitions and types. Names are always lowercased.
	Lowercase bool
}

// ReadCSV reads a dictionary from CSV. The first row must be a header with
// "word" and "definition" columns; a "type" column is optional and columns
// may appear in any order. Rows with an empty word are skipped.
func ReadCSV(r io.Reader, opts CSVOptions) (*Dictionary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv header: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	wordCol, defCol, typeCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case columnWord:
			if wordCol < 0 {
				wordCol = i
			}
		case columnDefinition:
			if defCol < 0 {
				defCol = i
			}
		case columnType:
			if typeCol < 0 {
				typeCol = i
			}
		}
	}
	if wordCol < 0 {
		return nil, fmt.Errorf("column %q: %w", columnWord, ErrMissingColumn)
	}
	if defCol < 0 {
		return nil, fmt.Errorf("column %q: %w", columnDefinition, ErrMissingColumn)
	}

	d := New()
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", line, err)
		}

		name := field(record, wordCol)
		if NormalizeName(name) == "" {
			continue
		}
		def := strings.TrimSpace(field(record, defCol))
		typ := strings.TrimSpace(field(record, typeCol))
		if opts.Lowercase {
			def = strings.ToLower(def)
			typ = strings.ToLower(typ)
		}
		d.Add(name, def, typ)
	}

	return d, nil
}

// WriteCSV writes d with a "word,type,definition" header and one row per
// definition, entries in name order.
func WriteCSV(w io.Writer, d *Dictionary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{columnWord, columnType, columnDefinition}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range d.Entries() {
		for _, def := range e.Definitions {
			if err := writer.Write([]string{e.Name, e.Type, def}); err != nil {
				return fmt.Errorf("failed to write csv row for %q: %w", e.Name, err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
