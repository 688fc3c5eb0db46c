package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestDoRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok")) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, http.NoBody)
	if err != nil {
		t.Fatal(err)
	}

	body, err := Do(context.Background(), srv.Client(), req, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestDoPermanentNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, http.NoBody)
	if err != nil {
		t.Fatal(err)
	}

	_, err = Do(context.Background(), srv.Client(), req, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("Do() = %v, want HTTPError 404", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 404)", got)
	}
}

func TestDoGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, http.NoBody)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Do(context.Background(), srv.Client(), req, nil); err == nil {
		t.Fatal("Do() succeeded, want error after exhausted retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3 (initial + two retries)", got)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&HTTPError{StatusCode: 500}, true},
		{&HTTPError{StatusCode: 502}, true},
		{&HTTPError{StatusCode: 429}, true},
		{&HTTPError{StatusCode: 404}, false},
		{&HTTPError{StatusCode: 403}, false},
		{errors.New("dial tcp: i/o timeout"), true},
	}
	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestURLToKey(t *testing.T) {
	a := URLToKey("https://linktr.ee/foo")
	b := URLToKey("https://linktr.ee/foo")
	c := URLToKey("https://linktr.ee/bar")
	if a != b {
		t.Error("URLToKey not deterministic")
	}
	if a == c {
		t.Error("URLToKey collision for different URLs")
	}
	if len(a) != 64 {
		t.Errorf("URLToKey length = %d, want 64 hex chars", len(a))
	}
}
