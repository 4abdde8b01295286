package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetcherSuccess(t *testing.T) {
	body := "timestamp\n2024-01-01T07:30:00\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 5*time.Second)
	got, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got != body {
		t.Errorf("Fetch() = %q, want %q", got, body)
	}
}

func TestFetcherNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 5*time.Second)
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Error("Fetch() succeeded on 404, want error")
	}
}

func TestFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	f := NewFetcher(srv.URL, 2*time.Second)
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Error("Fetch() succeeded against closed server, want error")
	}
}

func TestFetcherContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(srv.URL, 5*time.Second)
	if _, err := f.Fetch(ctx); err == nil {
		t.Error("Fetch() succeeded with cancelled context, want error")
	}
}
