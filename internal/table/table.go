package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Row is a single record keyed by column header. Values stay as the raw
// strings from the export; numeric interpretation happens at use sites.
type Row map[string]string

// Table is an ordered sequence of rows plus the header observed at parse
// time. The header is advisory: pivoting can introduce columns that are not
// in it, and any row may lack any given key.
type Table struct {
	Header []string
	Rows   []Row
}

// ReadCSV parses comma-delimited text with a header row into a Table.
// Short records are padded, long records keep their extra cells under
// synthetic "Column N" headers.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &Table{Header: make([]string, len(header))}
	for i, h := range header {
		t.Header[i] = strings.TrimSpace(h)
	}

	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		row := make(Row, len(t.Header))
		for i, v := range rec {
			key := ""
			if i < len(t.Header) {
				key = t.Header[i]
			}
			if key == "" {
				key = fmt.Sprintf("Column %d", i+1)
			}
			row[key] = strings.TrimSpace(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadCSVBytes is a convenience wrapper over ReadCSV.
func ReadCSVBytes(data []byte) (*Table, error) {
	return ReadCSV(bytes.NewReader(data))
}

// UnionHeader returns the declared header followed by any extra keys that
// appeared during transforms, the extras in sorted order so output is
// deterministic.
func (t *Table) UnionHeader() []string {
	seen := make(map[string]bool, len(t.Header))
	out := make([]string, 0, len(t.Header))
	for _, h := range t.Header {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	var extras []string
	for _, row := range t.Rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				extras = append(extras, k)
			}
		}
	}
	sort.Strings(extras)
	return append(out, extras...)
}

// WriteCSV serializes the table using the given header order. A nil header
// falls back to UnionHeader.
func (t *Table) WriteCSV(w io.Writer, header []string) error {
	if header == nil {
		header = t.UnionHeader()
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(header))
	for i, row := range t.Rows {
		for j, h := range header {
			rec[j] = row[h]
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Clone returns a deep copy; transforms never mutate their input.
func (t *Table) Clone() *Table {
	out := &Table{Header: append([]string(nil), t.Header...)}
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}
