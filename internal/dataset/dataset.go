// Package dataset reads column-oriented numeric data that feeds buffer
// reader nodes.
//
// The format is CSV with a header row. Each header names a column; every
// following record holds one value per column. Blank records are skipped.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Table holds named numeric columns of equal length.
type Table struct {
	names   []string
	columns map[string][]float64
	rows    int
}

// Load reads the CSV file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Read parses CSV from in. Header names are trimmed and NFC-normalised so
// they compare equal to node names in session files.
func Read(in io.Reader) (*Table, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Table{columns: map[string][]float64{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	t := &Table{
		names:   make([]string, len(header)),
		columns: make(map[string][]float64, len(header)),
	}
	for i, raw := range header {
		name := norm.NFC.String(strings.TrimSpace(raw))
		if name == "" {
			return nil, fmt.Errorf("dataset column %d has no name", i)
		}
		if _, dup := t.columns[name]; dup {
			return nil, fmt.Errorf("duplicate dataset column %q", name)
		}
		t.names[i] = name
		t.columns[name] = nil
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read dataset row %d: %w", line, err)
		}
		if blankRecord(record) {
			continue
		}
		if len(record) != len(t.names) {
			return nil, fmt.Errorf("dataset row %d has %d fields, want %d", line, len(record), len(t.names))
		}
		for i, raw := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("parse dataset row %d column %q: %w", line, t.names[i], err)
			}
			t.columns[t.names[i]] = append(t.columns[t.names[i]], v)
		}
		t.rows++
	}
	return t, nil
}

// Names returns the column names in file order.
func (t *Table) Names() []string {
	return t.names
}

// Rows returns the number of data records.
func (t *Table) Rows() int {
	return t.rows
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	col, ok := t.columns[name]
	return col, ok
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
