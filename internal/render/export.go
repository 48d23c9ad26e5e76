package render

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"ledgerview/internal/core"
)

// WriteText writes one fixed-layout line per record:
//
//	date | description | vendor | amount | type | time
func WriteText(w io.Writer, records []core.Transaction) error {
	bw := bufio.NewWriter(w)
	for i, t := range records {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%s | %-30s | %-18s | %10.2f | %-6s | %s",
			t.Date, t.Description, t.Vendor, t.Amount, t.Type, t.Time); err != nil {
			return fmt.Errorf("write text line %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, records []core.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Date", "Time", "Description", "Vendor", "Amount", "Type"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, t := range records {
		row := []string{
			t.Date,
			t.Time,
			t.Description,
			t.Vendor,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			t.Type,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
