package series

import (
	"strconv"
	"testing"
)

func TestLogAppendCount(t *testing.T) {
	l := New()
	if l.Count() != 0 {
		t.Fatalf("expected empty log, got %d", l.Count())
	}

	l.Append(0, []float64{1, 2})
	l.Append(0.1, []float64{3, 4})

	if l.Count() != 2 {
		t.Errorf("expected 2 samples, got %d", l.Count())
	}

	tm, row := l.At(1)
	if tm != 0.1 || row[0] != 3 || row[1] != 4 {
		t.Errorf("unexpected sample: %v %v", tm, row)
	}
}

func TestLogAppendCopiesValues(t *testing.T) {
	l := New()
	vals := []float64{1, 2}
	l.Append(0, vals)
	vals[0] = 99

	if _, row := l.At(0); row[0] != 1 {
		t.Error("log aliased caller slice")
	}
}

func TestLogClear(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.Append(float64(i), []float64{float64(i)})
	}
	l.Clear()

	if l.Count() != 0 {
		t.Errorf("expected 0 samples after clear, got %d", l.Count())
	}
	if len(l.Times()) != 0 {
		t.Error("times not cleared")
	}

	l.Append(7, []float64{1})
	if tm, _ := l.At(0); tm != 7 {
		t.Errorf("expected first time 7 after clear, got %v", tm)
	}
}

func TestLogExportRows(t *testing.T) {
	l := New()
	l.Append(0, []float64{0.2, 0, -4, 0, 0.4, 0.4})
	l.Append(0.01, []float64{0.1996, -0.04, -3.992, 0.0008, 0.3984, 0.3992})
	l.Append(0.02, []float64{0.1988, -0.0799, -3.976, 0.0032, 0.3952, 0.3984})

	header := []string{"t", "x", "v", "a", "KE", "PE", "E"}
	rows := l.ExportRows(header)

	if len(rows) != 4 {
		t.Fatalf("expected 4 records, got %d", len(rows))
	}
	for i, h := range header {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}
	for i, rec := range rows[1:] {
		if len(rec) != 7 {
			t.Errorf("row %d has %d fields, want 7", i, len(rec))
		}
		got, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			t.Fatalf("row %d time not numeric: %v", i, err)
		}
		if want, _ := l.At(i); got != want {
			t.Errorf("row %d time = %v, want %v", i, got, want)
		}
	}

	if noHeader := l.ExportRows(nil); len(noHeader) != 3 {
		t.Errorf("expected 3 records without header, got %d", len(noHeader))
	}
}

func TestLogColumnsAndRows(t *testing.T) {
	l := New()
	l.Append(0, []float64{1, 10})
	l.Append(1, []float64{2})

	col := l.Column(1)
	if col[0] != 10 || col[1] != 0 {
		t.Errorf("unexpected column: %v", col)
	}

	rows := l.Rows()
	if rows[0][0] != 0 || rows[0][1] != 1 || rows[1][0] != 1 {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestLogClone(t *testing.T) {
	l := New()
	l.Append(0, []float64{1})
	c := l.Clone()
	l.Append(1, []float64{2})
	l.Clear()

	if c.Count() != 1 {
		t.Errorf("clone affected by original: %d samples", c.Count())
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in  float64
		out string
	}{
		{0, "0"},
		{0.01, "0.01"},
		{0.1996, "0.1996"},
		{-4, "-4"},
		{1e-7, "1e-07"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.out {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.out)
		}
	}
}
