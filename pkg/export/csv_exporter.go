package export

import (
	"bytes"
	"encoding/csv"
)

// CSVExporter renders a Dataset as CSV.
type CSVExporter struct{}

// Render writes the dataset's header row followed by one row per entry.
func (CSVExporter) Render(data Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(data.Headers); err != nil {
		return nil, err
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, h := range data.Headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
