// Package rates resolves historical GBP exchange rates from the
// Frankfurter API (ECB data), caching results for the process lifetime.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the Frankfurter historical-rates endpoint.
const DefaultBaseURL = "https://api.frankfurter.dev/v1"

// DefaultTimeout bounds each request to the rate source.
const DefaultTimeout = 10 * time.Second

const dateFormat = "2006-01-02"

var one = decimal.NewFromInt(1)

// Resolver resolves (currency, date) pairs to GBP rates. Successful
// lookups are cached for the lifetime of the Resolver; failures are not,
// so a later retry for the same key hits the source again. The cache is
// unbounded: a statement batch resolves at most one key per distinct
// settlement date, so growth is bounded by the batch's date span.
//
// Resolver is safe for concurrent use. Concurrent misses for the same key
// may each hit the source; the last write wins, which is harmless because
// a key's rate never changes.
type Resolver struct {
	baseURL string
	client  *http.Client

	mu    sync.Mutex
	cache map[string]decimal.Decimal
}

// NewResolver creates a Resolver against baseURL. Empty baseURL uses
// DefaultBaseURL; nil client uses one with DefaultTimeout.
func NewResolver(baseURL string, client *http.Client) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Resolver{
		baseURL: baseURL,
		client:  client,
		cache:   make(map[string]decimal.Decimal),
	}
}

// Resolve returns how many GBP one unit of currency was worth on date.
// GBP itself is always exactly 1 and never touches the source or cache.
// Failures are reported as *Error.
func (r *Resolver) Resolve(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "GBP" {
		return one, nil
	}

	key := currency + ":" + date.Format(dateFormat)

	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	rate, err := r.fetch(ctx, currency, date)
	if err != nil {
		return decimal.Decimal{}, err
	}

	r.mu.Lock()
	r.cache[key] = rate
	r.mu.Unlock()

	return rate, nil
}

// ResolveDate is Resolve for an ISO date string (YYYY-MM-DD). A malformed
// date fails with KindInvalidDate before any network attempt.
func (r *Resolver) ResolveDate(ctx context.Context, currency, dateStr string) (decimal.Decimal, error) {
	date, err := time.Parse(dateFormat, dateStr)
	if err != nil {
		return decimal.Decimal{}, &Error{
			Kind:     KindInvalidDate,
			Currency: strings.ToUpper(strings.TrimSpace(currency)),
			Date:     dateStr,
			Err:      err,
		}
	}
	return r.Resolve(ctx, currency, date)
}

func (r *Resolver) fetch(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error) {
	dateStr := date.Format(dateFormat)
	fail := func(kind Kind, err error) (decimal.Decimal, error) {
		return decimal.Decimal{}, &Error{Kind: kind, Currency: currency, Date: dateStr, Err: err}
	}

	url := fmt.Sprintf("%s/%s?base=%s&symbols=GBP", r.baseURL, dateStr, currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(KindTransport, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fail(KindTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fail(KindNotFoundForDate, fmt.Errorf("no rate data for %s", dateStr))
	}
	if resp.StatusCode != http.StatusOK {
		return fail(KindTransport, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(KindTransport, fmt.Errorf("reading response: %w", err))
	}

	var parsed struct {
		Rates map[string]decimal.Decimal `json:"rates"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fail(KindMalformedResponse, fmt.Errorf("decoding response: %w", err))
	}

	rate, ok := parsed.Rates["GBP"]
	if !ok {
		return fail(KindNoRateFound, fmt.Errorf("response carries no GBP rate for %s", currency))
	}
	return rate, nil
}
