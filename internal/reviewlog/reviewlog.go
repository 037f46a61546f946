// Package reviewlog records degraded statement rows for manual review.
package reviewlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one degraded row flagged for review.
type Entry struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Reason      string
}

// Header is the CSV header for the review log.
const Header = "date,description,amount,reason"

const (
	numFields  = 4
	dateFormat = "2006-01-02"
	colDate    = 0
	colDesc    = 1
	colAmount  = 2
	colReason  = 3
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colDate] = e.Date.Format(dateFormat)
	row[colDesc] = e.Description
	row[colAmount] = e.Amount.StringFixed(2)
	row[colReason] = e.Reason
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return Entry{
		Date:        date,
		Description: record[colDesc],
		Amount:      amount,
		Reason:      record[colReason],
	}, nil
}

// Append writes entries to the review log at path, creating the file and
// header if needed.
func Append(path string, entries []Entry) error {
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening review log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for _, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry: %w", err)
		}
	}
	return cw.Error()
}
