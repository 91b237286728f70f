package listview

import (
	"encoding/csv"
	"io"
)

// ExportCSV writes the current projection as CSV: one header row of column
// keys, then one row per visible entity. encoding/csv handles quoting of
// embedded quotes, separators, and newlines.
func (m *Model[T]) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(m.fields))
	for i, f := range m.fields {
		header[i] = f.Key
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(m.fields))
	for _, item := range m.projection {
		for i, f := range m.fields {
			row[i] = f.Value(item)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
