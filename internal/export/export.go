// Package export renders a whole catalog as CSV, JSON or an XLSX workbook.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/aoideee/catalogs/internal/data"
)

// Format selects the output document type.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

// ParseFormat resolves a format selector. Anything unsupported is a
// *data.ValidationError on "format"; there is no fallback.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case CSV, JSON, XLSX:
		return f, nil
	default:
		return "", &data.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported export format %q", s)}
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Filename is the attachment name for an export of base.
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Write encodes records in format f. Field order is the schema's declaration
// order in every format.
func Write[T data.Record[T]](w io.Writer, f Format, schema *data.Schema[T], records []T) error {
	switch f {
	case CSV:
		return writeCSV(w, schema, records)
	case JSON:
		return writeJSON(w, records)
	case XLSX:
		return writeXLSX(w, schema, records)
	default:
		_, err := ParseFormat(string(f))
		return err
	}
}

func writeCSV[T data.Record[T]](w io.Writer, schema *data.Schema[T], records []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.FieldNames()); err != nil {
		return err
	}

	row := make([]string, len(schema.Fields))
	for _, r := range records {
		for i, field := range schema.Fields {
			row[i] = field.Text(r)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeJSON[T any](w io.Writer, records []T) error {
	if records == nil {
		records = []T{}
	}
	js, err := json.MarshalIndent(records, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')
	_, err = w.Write(js)
	return err
}

func writeXLSX[T data.Record[T]](w io.Writer, schema *data.Schema[T], records []T) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := schema.Plural
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]any, len(schema.Fields))
	for i, name := range schema.FieldNames() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for n, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		// Field values keep their native types, so release dates become date cells.
		values := make([]any, len(schema.Fields))
		for i, field := range schema.Fields {
			values[i] = field.Value(r)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return f.Write(w)
}
