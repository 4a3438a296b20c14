package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid config", cfg: Config{BaseURL: "http://localhost:8080"}},
		{name: "missing base url", cfg: Config{}, wantErr: true},
		{name: "custom timeout", cfg: Config{BaseURL: "http://localhost:8080", Timeout: 5 * time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && c == nil {
				t.Fatalf("NewClient() returned nil client")
			}
		})
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestPushSendsExpectedParameters(t *testing.T) {
	var gotPath string
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.Push(context.Background(), "cpu", 5, 42); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if gotPath != "/push" {
		t.Fatalf("path = %q, want /push", gotPath)
	}
	if gotQuery != "series=cpu&t=5&v=42" {
		t.Fatalf("query = %q, want series=cpu&t=5&v=42", gotQuery)
	}
}

func TestPushErrorsOnUnexpectedStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	if err := c.Push(context.Background(), "cpu", 5, 42); err == nil {
		t.Fatalf("Push() did not return an error for a 400 response")
	}
}

func TestGreedyQueryParsesResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "42 6\n")
	})

	result, err := c.GreedyQuery(context.Background(), "cpu", 5)
	if err != nil {
		t.Fatalf("GreedyQuery() error = %v", err)
	}
	if result.Value != 42 || result.End != 6 {
		t.Fatalf("GreedyQuery() = %+v, want {Value:42 End:6}", result)
	}
}

func TestRangeQuerySendsExpectedParameters(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, "100 10\n")
	})

	if _, err := c.RangeQuery(context.Background(), "cpu", 1, 10); err != nil {
		t.Fatalf("RangeQuery() error = %v", err)
	}
	if gotQuery != "l=1&r=10&series=cpu" {
		t.Fatalf("query = %q, want l=1&r=10&series=cpu", gotQuery)
	}
}

func TestQueryErrorsOnNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	if _, err := c.SuffixQuery(context.Background(), "cpu", 5); err == nil {
		t.Fatalf("SuffixQuery() did not return an error for a 404 response")
	}
}
