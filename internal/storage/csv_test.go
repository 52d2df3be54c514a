package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/series"
)

func TestWriteLogCSVFormat(t *testing.T) {
	l := sampleLog()
	l.Append(0.02, []float64{0.1988, -0.0799, -3.976, 0.0032, 0.3952, 0.3984})

	var buf bytes.Buffer
	if err := WriteLogCSV(&buf, l, dynamo.Header); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		t.Error("output not newline terminated")
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "t,x,v,a,KE,PE,E" {
		t.Errorf("unexpected header %q", lines[0])
	}

	wantTimes := []string{"0", "0.01", "0.02"}
	for i, line := range lines[1:] {
		if strings.HasSuffix(line, ",") {
			t.Errorf("line %d has trailing comma", i+1)
		}
		fields := strings.Split(line, ",")
		if len(fields) != 7 {
			t.Errorf("line %d has %d fields", i+1, len(fields))
		}
		if fields[0] != wantTimes[i] {
			t.Errorf("line %d time %q, want %q", i+1, fields[0], wantTimes[i])
		}
	}
}

func TestWriteLogCSVWithoutHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLogCSV(&buf, sampleLog(), nil); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Errorf("expected 2 lines, got %d", n)
	}
}

func TestReadLogCSVRoundTrip(t *testing.T) {
	l := sampleLog()
	var buf bytes.Buffer
	if err := WriteLogCSV(&buf, l, dynamo.Header); err != nil {
		t.Fatal(err)
	}

	back, header, err := ReadLogCSV(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(header) != len(dynamo.Header) {
		t.Errorf("expected header of %d fields, got %v", len(dynamo.Header), header)
	}
	if back.Count() != l.Count() {
		t.Fatalf("expected %d samples, got %d", l.Count(), back.Count())
	}
	for i := 0; i < l.Count(); i++ {
		t1, r1 := l.At(i)
		t2, r2 := back.At(i)
		if t1 != t2 {
			t.Errorf("sample %d time %v != %v", i, t1, t2)
		}
		for j := range r1 {
			if r1[j] != r2[j] {
				t.Errorf("sample %d value %d: %v != %v", i, j, r1[j], r2[j])
			}
		}
	}
}

func TestReadLogCSVBadRow(t *testing.T) {
	_, _, err := ReadLogCSV(strings.NewReader("t,x\n0,1\nnope,2\n"))
	if err == nil {
		t.Error("expected error for non-numeric time")
	}
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := SaveCSV(path, series.New().ExportRows(dynamo.Header)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "t,x,v,a,KE,PE,E\n" {
		t.Errorf("unexpected file contents %q", data)
	}
}

func TestDefaultCSVName(t *testing.T) {
	now := time.Date(2025, 12, 18, 9, 5, 3, 0, time.UTC)
	if got := DefaultCSVName(now); got != "mass_spring_2025-12-18_09-05-03.csv" {
		t.Errorf("unexpected name %q", got)
	}
}
