// Package report assembles the tabular content of the exported PDFs and CSVs. Every function
// is pure: same inputs, same rows.
package report

import (
	"encoding/csv"
	"io"
)

// Table is one titled grid of cells.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// AddRow appends a row, padding or cutting it to the header width.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Document is a titled sequence of tables.
type Document struct {
	Title  string  `json:"title"`
	Tables []Table `json:"tables"`
}

// WriteCSV writes every table as a block: title line, header line, rows, blank line.
func (d Document) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if d.Title != "" {
		if err := cw.Write([]string{Sanitize(d.Title)}); err != nil {
			return err
		}
	}
	for _, t := range d.Tables {
		if err := t.write(cw); err != nil {
			return err
		}
		if err := cw.Write([]string{""}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes the table on its own.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := t.write(cw); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (t Table) write(cw *csv.Writer) error {
	if t.Title != "" {
		if err := cw.Write([]string{Sanitize(t.Title)}); err != nil {
			return err
		}
	}
	if err := cw.Write(sanitizeAll(t.Headers)); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write(sanitizeAll(r)); err != nil {
			return err
		}
	}
	return nil
}

func sanitizeAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = Sanitize(c)
	}
	return out
}
