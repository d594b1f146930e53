// Package filestore persists pipeline datasets and reports on the local
// filesystem: CSV tables for data, JSON for the metrics report.
package filestore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// table is a parsed CSV file addressed by column name.
type table struct {
	path    string
	columns map[string]int
	rows    [][]string
}

// readTable loads path and checks that every required column is present.
// Extra columns are ignored and column order does not matter.
func readTable(path string, required []string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = false

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s is missing required column(s): %s", path, strings.Join(missing, ", "))
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &table{path: path, columns: columns, rows: rows}, nil
}

func (t *table) value(row int, column string) string {
	return strings.TrimSpace(t.rows[row][t.columns[column]])
}

func (t *table) float(row int, column string) (float64, error) {
	raw := t.value(row, column)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, t.rowError(row, column, raw)
	}
	return v, nil
}

func (t *table) label(row int, column string) (int, error) {
	raw := t.value(row, column)
	switch raw {
	case "0", "false", "False":
		return 0, nil
	case "1", "true", "True":
		return 1, nil
	default:
		return 0, t.rowError(row, column, raw)
	}
}

// rowError reports a bad cell using the 1-based file line number.
func (t *table) rowError(row int, column, raw string) error {
	return fmt.Errorf("%s line %d: invalid %s value %q", t.path, row+2, column, raw)
}

// writeTable writes header and rows to path atomically, creating parent
// directories as needed.
func writeTable(path string, header []string, rows [][]string) error {
	return WriteAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
}

// WriteAtomic writes path through a temporary file in the same directory
// and renames it into place, so readers never see a partial file.
func WriteAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatLabel(l int) string {
	return strconv.Itoa(l)
}
