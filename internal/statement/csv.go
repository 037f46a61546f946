package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sterling-dev/sterling/internal/model"
)

// Header is the CSV header for the normalized statement.
const Header = "date,description,amount,balance,amount gbp"

const (
	numFields    = 5
	colDate      = 0
	colDesc      = 1
	colAmount    = 2
	colBalance   = 3
	colAmountGBP = 4
)

// WriteRecords writes the normalized statement (including header).
func WriteRecords(w io.Writer, records []model.NormalizedRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalRecord converts a NormalizedRecord to a CSV row ([]string).
func MarshalRecord(rec model.NormalizedRecord) []string {
	row := make([]string, numFields)
	row[colDate] = rec.Date.Format(dateFormat)
	row[colDesc] = rec.Description
	row[colAmount] = rec.Amount.StringFixed(2)
	row[colBalance] = rec.Balance.StringFixed(2)
	row[colAmountGBP] = rec.AmountGBP.StringFixed(2)
	return row
}
