// Package statement turns parsed bank transactions into the normalized
// GBP statement.
//
// Non-GBP rows are always converted via their USD-equivalent Amount field
// (the upstream export pre-converts every foreign leg to USD), so the rate
// lookup is always USD to GBP regardless of the row's original currency.
// A row whose original currency is neither GBP nor a USD pass-through is
// therefore converted through its USD equivalent, never by a direct
// lookup of its own currency. Known limitation, kept deliberately.
package statement

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sterling-dev/sterling/internal/model"
)

// settlementCurrency is the currency the upstream export denominates the
// Amount column in for every non-GBP row.
const settlementCurrency = "USD"

const dateFormat = "2006-01-02"

// RateResolver resolves how many GBP one unit of currency was worth on date.
type RateResolver interface {
	Resolve(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error)
}

// Degraded describes a row whose rate lookup failed; its GBP amount was
// emitted as 0.00 and the row is flagged for manual review.
type Degraded struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Reason      string
}

// Transformer converts transaction batches into normalized GBP records.
type Transformer struct {
	rates  RateResolver
	logger zerolog.Logger
}

// NewTransformer creates a Transformer using rates for USD lookups and
// logger for per-row degradation warnings.
func NewTransformer(rates RateResolver, logger zerolog.Logger) *Transformer {
	return &Transformer{rates: rates, logger: logger}
}

// Transform sorts records by settlement date (stable, ascending), converts
// each row to GBP, and rounds monetary values to 2 decimal places (half
// away from zero, so 10.005 rounds to 10.01). A failed rate lookup never
// aborts the batch: the row's GBP amount becomes 0.00, a warning naming
// the affected date is logged, and the row is returned in the degraded
// list.
func (t *Transformer) Transform(ctx context.Context, records []model.TransactionRecord) ([]model.NormalizedRecord, []Degraded) {
	sorted := make([]model.TransactionRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompletedDate.Before(sorted[j].CompletedDate)
	})

	out := make([]model.NormalizedRecord, 0, len(sorted))
	var degraded []Degraded

	for _, rec := range sorted {
		gbp, err := t.amountGBP(ctx, rec)
		if err != nil {
			t.logger.Warn().
				Str("date", rec.CompletedDate.Format(dateFormat)).
				Str("description", rec.Description).
				Err(err).
				Msg("rate lookup failed, GBP amount set to 0.00 for review")
			degraded = append(degraded, Degraded{
				Date:        rec.CompletedDate,
				Description: rec.Description,
				Amount:      rec.Amount.Round(2),
				Reason:      err.Error(),
			})
			gbp = decimal.Zero
		}

		out = append(out, model.NormalizedRecord{
			Date:        rec.CompletedDate,
			Description: rec.Description,
			Amount:      rec.Amount.Round(2),
			Balance:     rec.Balance.Round(2),
			AmountGBP:   gbp.Round(2),
		})
	}

	return out, degraded
}

// amountGBP computes one row's GBP value.
//
// GBP rows carry their true magnitude in OrigAmount but only a reliable
// direction sign in Amount (the two can disagree on currency-exchange
// rows), so the result takes the magnitude from OrigAmount and the sign
// from Amount. A zero Amount counts as positive.
func (t *Transformer) amountGBP(ctx context.Context, rec model.TransactionRecord) (decimal.Decimal, error) {
	if strings.ToUpper(strings.TrimSpace(rec.OrigCurrency)) == "GBP" {
		gbp := rec.OrigAmount.Abs()
		if rec.Amount.IsNegative() {
			gbp = gbp.Neg()
		}
		return gbp, nil
	}

	rate, err := t.rates.Resolve(ctx, settlementCurrency, rec.CompletedDate)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return rec.Amount.Mul(rate), nil
}
