package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// newRateServer serves a fixed GBP rate and counts requests.
func newRateServer(t *testing.T, rate string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","date":"2025-01-15","rates":{"GBP":` + rate + `}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	return rerr.Kind
}

func TestResolve_GBPIsAlwaysOne(t *testing.T) {
	// Any call to the source fails the test: GBP must short-circuit.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request to rate source for GBP")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, nil)
	got, err := r.Resolve(context.Background(), "GBP", date(2025, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())

	// Case-insensitive.
	got, err = r.Resolve(context.Background(), "gbp", date(2025, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())
}

func TestResolve_Success(t *testing.T) {
	srv, _ := newRateServer(t, "0.79")
	r := NewResolver(srv.URL, nil)

	got, err := r.Resolve(context.Background(), "USD", date(2025, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, "0.79", got.String())
}

func TestResolve_RequestShape(t *testing.T) {
	var path, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"rates":{"GBP":0.79}}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, nil)
	_, err := r.Resolve(context.Background(), "usd", date(2025, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, "/2025-01-15", path)
	assert.Equal(t, "base=USD&symbols=GBP", query)
}

func TestResolve_CacheHit(t *testing.T) {
	srv, calls := newRateServer(t, "0.79")
	r := NewResolver(srv.URL, nil)

	first, err := r.Resolve(context.Background(), "USD", date(2025, 1, 15))
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "USD", date(2025, 1, 15))
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, 1, *calls)
}

func TestResolve_DistinctDatesMiss(t *testing.T) {
	srv, calls := newRateServer(t, "0.79")
	r := NewResolver(srv.URL, nil)

	_, err := r.Resolve(context.Background(), "USD", date(2025, 1, 15))
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "USD", date(2025, 1, 16))
	require.NoError(t, err)

	assert.Equal(t, 2, *calls)
}

func TestResolve_NotFoundForDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, nil)
	_, err := r.Resolve(context.Background(), "USD", date(2300, 1, 1))
	assert.Equal(t, KindNotFoundForDate, kindOf(t, err))
}

func TestResolve_ServerErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, nil)
	_, err := r.Resolve(context.Background(), "USD", date(2025, 1, 15))
	assert.Equal(t, KindTransport, kindOf(t, err))
}

func TestResolve_ConnectionRefusedIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	r := NewResolver(srv.URL, nil)
	_, err := r.Resolve(context.Background(), "USD", date(2025, 1, 15))
	assert.Equal(t, KindTransport, kindOf(t, err))
}

func TestResolve_NoGBPRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"EUR":1.19}}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, nil)
	_, err := r.Resolve(context.Background(), "USD", date(2025, 1, 15))
	assert.Equal(t, KindNoRateFound, kindOf(t, err))
}

func TestResolve_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, nil)
	_, err := r.Resolve(context.Background(), "USD", date(2025, 1, 15))
	assert.Equal(t, KindMalformedResponse, kindOf(t, err))
}

func TestResolve_FailuresNotCached(t *testing.T) {
	failing := true
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"rates":{"GBP":0.79}}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, nil)
	_, err := r.Resolve(context.Background(), "USD", date(2025, 1, 15))
	require.Error(t, err)

	failing = false
	got, err := r.Resolve(context.Background(), "USD", date(2025, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, "0.79", got.String())
	assert.Equal(t, 2, calls)
}

func TestResolveDate_InvalidDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network attempted for invalid date")
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, nil)
	for _, bad := range []string{"15/01/2025", "2025-13-40", "yesterday", ""} {
		_, err := r.ResolveDate(context.Background(), "USD", bad)
		assert.Equal(t, KindInvalidDate, kindOf(t, err), "date %q", bad)
	}
}

func TestResolveDate_Valid(t *testing.T) {
	srv, _ := newRateServer(t, "0.81")
	r := NewResolver(srv.URL, nil)

	got, err := r.ResolveDate(context.Background(), "USD", "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, "0.81", got.String())
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &Error{Kind: KindTransport, Currency: "USD", Date: "2025-01-15", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "USD/2025-01-15")
	assert.Contains(t, err.Error(), "transport")
}
