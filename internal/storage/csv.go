package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/san-kum/springsim/internal/series"
)

// WriteCSV writes records comma separated, one per line, newline terminated.
func WriteCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("storage: write csv: %w", err)
	}
	return nil
}

// WriteLogCSV writes l with an optional header line.
func WriteLogCSV(w io.Writer, l *series.Log, header []string) error {
	return WriteCSV(w, l.ExportRows(header))
}

// SaveCSV writes records to path, replacing any existing file.
func SaveCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DefaultCSVName is the suggested file name for an export made at now.
func DefaultCSVName(now time.Time) string {
	return "mass_spring_" + now.Format("2006-01-02_15-04-05") + ".csv"
}

// ReadLogCSV parses a file produced by WriteLogCSV. A first record that does
// not parse as numbers is returned as the header.
func ReadLogCSV(r io.Reader) (*series.Log, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("storage: read csv: %w", err)
	}

	l := series.New()
	var header []string
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			if i == 0 {
				header = record
				continue
			}
			return nil, nil, fmt.Errorf("storage: line %d: bad time %q", i+1, record[0])
		}

		values := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: line %d field %d: %w", i+1, j+1, err)
			}
			values = append(values, v)
		}
		l.Append(t, values)
	}
	return l, header, nil
}
