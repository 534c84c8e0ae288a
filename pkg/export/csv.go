package export

import (
	"encoding/csv"
	"os"
)

// WriteCSV saves a header plus records at the local counterpart of a
// public /files/ path.
func (e Exporter) WriteCSV(public string, header []string, records [][]string) error {
	path, err := e.Resolve(public)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
