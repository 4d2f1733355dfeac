package core

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Encode writes records as CSV with the standard header. Decode reads the
// output back into an equal slice.
func Encode(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		if err := cw.Write(rec.Values()); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
