package series

import "strconv"

// Log is an append-only record of (time, values) samples in insertion order.
// It does not check that times are non-decreasing; callers guarantee it.
type Log struct {
	times []float64
	rows  [][]float64
}

func New() *Log {
	return &Log{}
}

// Clear drops every sample.
func (l *Log) Clear() {
	l.times = l.times[:0]
	l.rows = l.rows[:0]
}

// Append records a sample. values is copied.
func (l *Log) Append(t float64, values []float64) {
	row := make([]float64, len(values))
	copy(row, values)
	l.times = append(l.times, t)
	l.rows = append(l.rows, row)
}

func (l *Log) Count() int { return len(l.rows) }

// At returns the i-th sample. The returned slice must not be modified.
func (l *Log) At(i int) (float64, []float64) {
	return l.times[i], l.rows[i]
}

// Times returns a copy of the time column.
func (l *Log) Times() []float64 {
	out := make([]float64, len(l.times))
	copy(out, l.times)
	return out
}

// Column returns a copy of value column idx; rows too short contribute 0.
func (l *Log) Column(idx int) []float64 {
	out := make([]float64, len(l.rows))
	for i, row := range l.rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// Rows returns every sample as [time, values...].
func (l *Log) Rows() [][]float64 {
	out := make([][]float64, len(l.rows))
	for i, row := range l.rows {
		r := make([]float64, 0, len(row)+1)
		r = append(r, l.times[i])
		r = append(r, row...)
		out[i] = r
	}
	return out
}

// ExportRows formats the log as text records. A non-empty header becomes the
// first record; each sample follows as time then values.
func (l *Log) ExportRows(header []string) [][]string {
	out := make([][]string, 0, len(l.rows)+1)
	if len(header) > 0 {
		h := make([]string, len(header))
		copy(h, header)
		out = append(out, h)
	}
	for i, row := range l.rows {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, FormatValue(l.times[i]))
		for _, v := range row {
			rec = append(rec, FormatValue(v))
		}
		out = append(out, rec)
	}
	return out
}

// Clone returns an independent copy of the log.
func (l *Log) Clone() *Log {
	c := &Log{
		times: make([]float64, len(l.times)),
		rows:  make([][]float64, len(l.rows)),
	}
	copy(c.times, l.times)
	for i, row := range l.rows {
		c.rows[i] = append([]float64(nil), row...)
	}
	return c
}

// FormatValue renders v with the shortest representation that parses back
// to the same float64.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
