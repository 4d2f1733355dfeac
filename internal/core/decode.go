package core

import (
	"encoding/csv"
	"errors"
	"io"
)

// Decode reads CSV text from r and returns its rows as Records, in source
// order.
//
// The first row is the header. Columns are matched to Record fields by label
// (trimmed, case-insensitive), so column order in the source does not matter.
// Unknown columns are ignored, and a field whose column is missing, or whose
// row is short, decodes as "".
//
// Decoding is all or nothing: on any read or parse failure Decode returns a
// *DecodeError and no Records.
func Decode(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(newCleanReader(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, newDecodeError(err)
	}

	idx := headerIndex(header)

	records := []Record{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newDecodeError(err)
		}

		var rec Record
		for col, i := range idx {
			if i < len(row) {
				rec.set(col, row[i])
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// headerIndex maps each known column to its position in the header row.
// When a label repeats, the last occurrence wins.
func headerIndex(header []string) map[Column]int {
	idx := make(map[Column]int, len(Columns))
	for i, label := range header {
		if col, ok := ParseColumn(label); ok {
			idx[col] = i
		}
	}
	return idx
}

func newDecodeError(err error) *DecodeError {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &DecodeError{Line: pe.Line, Column: pe.Column, Err: pe.Err}
	}
	return &DecodeError{Err: err}
}
