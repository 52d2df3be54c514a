package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/series"
)

type ExportData struct {
	RunMetadata
	Header []string    `json:"header"`
	Rows   [][]float64 `json:"rows"`
}

// ExportJSON writes run metadata together with every sample as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, l *series.Log) error {
	data := ExportData{
		RunMetadata: meta,
		Header:      dynamo.Header,
		Rows:        l.Rows(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
