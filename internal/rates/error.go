package rates

import "fmt"

// Kind classifies a failed rate lookup. Callers branch on it to decide
// whether a failure is retryable or expected (e.g. non-trading days).
type Kind string

const (
	// KindInvalidDate means the date could not be validated before any
	// network attempt was made.
	KindInvalidDate Kind = "invalid_date"
	// KindNotFoundForDate means the source has no data for that calendar
	// date (future dates, very old dates, non-trading days).
	KindNotFoundForDate Kind = "not_found_for_date"
	// KindTransport means the source could not be reached (network error,
	// timeout, or an unexpected HTTP status). Retryable.
	KindTransport Kind = "transport"
	// KindNoRateFound means the response parsed but carried no GBP rate.
	KindNoRateFound Kind = "no_rate_found"
	// KindMalformedResponse means the response body was not valid JSON.
	KindMalformedResponse Kind = "malformed_response"
)

// Error describes a failed rate lookup for a (currency, date) pair.
type Error struct {
	Kind     Kind
	Currency string
	Date     string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rate lookup %s/%s (%s): %v", e.Currency, e.Date, e.Kind, e.Err)
	}
	return fmt.Sprintf("rate lookup %s/%s (%s)", e.Currency, e.Date, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }
