package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type payload struct {
	Name string `json:"name"`
}

func TestDecodeEnvelopeWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"name":"wrapped"}}`))
	}))
	defer server.Close()

	var out payload
	if err := NewClient("svc", server.URL).Get(context.Background(), "/x", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "wrapped" {
		t.Fatalf("got %q", out.Name)
	}
}

func TestDecodeEnvelopeBare(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"bare"}`))
	}))
	defer server.Close()

	var out payload
	if err := NewClient("svc", server.URL).Get(context.Background(), "/x", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "bare" {
		t.Fatalf("got %q", out.Name)
	}
}

func TestDecodeNullData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"name":"fallback"}`))
	}))
	defer server.Close()

	var out payload
	if err := NewClient("svc", server.URL).Get(context.Background(), "/x", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "fallback" {
		t.Fatalf("got %q", out.Name)
	}
}

func TestNon2xxReturnsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	var out payload
	err := NewClient("telemetry-store", server.URL).Get(context.Background(), "/x", &out)
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if rerr.Service != "telemetry-store" || rerr.Status != http.StatusInternalServerError {
		t.Fatalf("error = %+v", rerr)
	}
}

func TestTransportFailureReturnsRemoteError(t *testing.T) {
	var out payload
	err := NewClient("svc", "http://127.0.0.1:1").Get(context.Background(), "/x", &out)
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if rerr.Status != 0 {
		t.Fatalf("transport failure should carry no status: %+v", rerr)
	}
}

func TestContentTypeHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("Content-Type = %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	if err := NewClient("svc", server.URL).Post(context.Background(), "/x", payload{Name: "n"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
