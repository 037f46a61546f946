package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sterling-dev/sterling/internal/model"
)

// Column names as they appear in a Revolut export header.
const (
	ColDate         = "Date completed (UTC)"
	ColDescription  = "Description"
	ColOrigCurrency = "Orig currency"
	ColOrigAmount   = "Orig amount"
	ColAmount       = "Amount"
	ColBalance      = "Balance"
)

// RequiredColumns are the columns a Revolut export must carry. Extra
// columns are ignored.
var RequiredColumns = []string{
	ColDate,
	ColDescription,
	ColOrigCurrency,
	ColOrigAmount,
	ColAmount,
	ColBalance,
}

// Revolut exports carry either a full timestamp or a bare date.
var revolutDateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SchemaError reports required columns missing from an input header. It is
// returned before any row is parsed.
type SchemaError struct {
	Missing   []string
	Available []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing columns in input file: %s (available: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// RevolutParser parses Revolut business CSV exports.
type RevolutParser struct{}

// Format returns the parser name.
func (p *RevolutParser) Format() string { return "revolut" }

// Parse reads a Revolut CSV and returns TransactionRecords. The header is
// validated against RequiredColumns before any row is parsed; a missing
// column yields a *SchemaError naming every absent column.
func (p *RevolutParser) Parse(r io.Reader) ([]model.TransactionRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Available: header}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading revolut CSV: %w", err)
	}

	var txns []model.TransactionRecord
	for i, rec := range rows {
		txn, err := parseRevolutRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseRevolutRow(rec []string, idx map[string]int) (model.TransactionRecord, error) {
	date, err := parseRevolutDate(rec[idx[ColDate]])
	if err != nil {
		return model.TransactionRecord{}, err
	}

	origAmount, err := parseRevolutDecimal(rec[idx[ColOrigAmount]], "orig amount")
	if err != nil {
		return model.TransactionRecord{}, err
	}
	amount, err := parseRevolutDecimal(rec[idx[ColAmount]], "amount")
	if err != nil {
		return model.TransactionRecord{}, err
	}
	balance, err := parseRevolutDecimal(rec[idx[ColBalance]], "balance")
	if err != nil {
		return model.TransactionRecord{}, err
	}

	return model.TransactionRecord{
		CompletedDate: date,
		Description:   rec[idx[ColDescription]],
		OrigCurrency:  strings.ToUpper(strings.TrimSpace(rec[idx[ColOrigCurrency]])),
		OrigAmount:    origAmount,
		Amount:        amount,
		Balance:       balance,
	}, nil
}

func parseRevolutDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range revolutDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: unrecognized format", s)
}

// parseRevolutDecimal parses a monetary cell. Revolut leaves some cells
// blank (e.g. Orig amount on fee rows); blanks parse as zero.
func parseRevolutDecimal(s, field string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}
