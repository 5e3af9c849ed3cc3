// Package csvload reads contact log CSV exports into raw row maps for
// the normalizer.
package csvload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Row is one raw CSV record keyed by lower-cased column name. Values
// are trimmed; empty cells are omitted.
type Row map[string]string

// Load reads the CSV file at path.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Read parses CSV content from r. The first record is the header;
// header names are lower-cased and trimmed so lookups are uniform.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // log exports are ragged more often than not

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		row := make(Row, len(header))
		for i, v := range record {
			if i >= len(header) {
				break
			}
			v = strings.TrimSpace(v)
			if v != "" {
				row[header[i]] = v
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	return rows, nil
}
