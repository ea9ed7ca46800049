// Package export writes projections as CSV or NDJSON and chart series as PNG.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"aqdash/internal/table"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json", "ndjson":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want csv or json)", s)
}

// ToFile writes rows to path in the given format. "-" writes to stdout.
func ToFile[R any](path string, f Format, s table.Schema[R], rows []R) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		fh, err := os.Create(path)
		if err != nil {
			return err
		}
		defer fh.Close()
		w = fh
	}
	bw := bufio.NewWriter(w)
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(bw, s, rows)
	case FormatJSON:
		err = WriteNDJSON(bw, rows)
	default:
		err = fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

// WriteCSV writes one column per schema field, in schema order, with the
// field keys as header. Missing numbers are empty cells.
func WriteCSV[R any](w io.Writer, s table.Schema[R], rows []R) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Keys()); err != nil {
		return err
	}
	rec := make([]string, len(s.Fields))
	for _, r := range rows {
		for i, f := range s.Fields {
			rec[i] = f.Display(r)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNDJSON writes each row's JSON encoding on its own line.
func WriteNDJSON[R any](w io.Writer, rows []R) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
