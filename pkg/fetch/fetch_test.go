package fetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_DataURL(t *testing.T) {
	payload := []byte{0x77, 0x4F, 0x46, 0x32, 0x00, 0x01} // wOF2 magic
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "font/woff2")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := NewClient()
	got, err := c.DataURL(context.Background(), srv.URL+"/f.woff2")
	if err != nil {
		t.Fatalf("DataURL() failed: %v", err)
	}

	want := "data:font/woff2;base64," + base64.StdEncoding.EncodeToString(payload)
	if got != want {
		t.Errorf("DataURL() = %q, want %q", got, want)
	}
}

func TestClient_DataURL_PassthroughDataURI(t *testing.T) {
	c := NewClient()
	in := "data:font/woff2;base64,AAAA"
	got, err := c.DataURL(context.Background(), in)
	if err != nil {
		t.Fatalf("DataURL() failed: %v", err)
	}
	if got != in {
		t.Errorf("data: URIs must pass through unchanged, got %q", got)
	}
}

func TestClient_Text(t *testing.T) {
	const body = "@font-face{font-family:'X';src:url(f.woff2);}"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c := NewClient()
	got, err := c.Text(context.Background(), srv.URL+"/a.css")
	if err != nil {
		t.Fatalf("Text() failed: %v", err)
	}
	if got != body {
		t.Errorf("Text() = %q, want %q", got, body)
	}
}

func TestClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient()
	_, err := c.DataURL(context.Background(), srv.URL+"/missing.woff2")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got error %v, want ErrNotFound", err)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient()
	got, err := c.Text(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Text() failed after retries: %v", err)
	}
	if got != "ok" {
		t.Errorf("Text() = %q, want ok", got)
	}
	if calls.Load() != 3 {
		t.Errorf("server called %d times, want 3", calls.Load())
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.Text(context.Background(), srv.URL)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("got error %v, want ErrNetwork", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1 (4xx must not retry)", calls.Load())
	}
}

func TestResolveMIME(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		contentType string
		body        []byte
		want        string
	}{
		{
			name:        "extension wins over octet-stream",
			url:         "https://cdn.example.com/fonts/inter.woff2",
			contentType: "application/octet-stream",
			body:        []byte{0x77, 0x4F, 0x46, 0x32},
			want:        "font/woff2",
		},
		{
			name:        "header when extension unknown",
			url:         "https://cdn.example.com/fonts/inter",
			contentType: "font/woff; charset=utf-8",
			body:        []byte{0x77, 0x4F, 0x46, 0x46},
			want:        "font/woff",
		},
		{
			name: "sniff as last resort",
			url:  "https://cdn.example.com/asset",
			body: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
			want: "image/png",
		},
		{
			name: "eot extension",
			url:  "https://cdn.example.com/legacy.eot?v=4",
			want: "application/vnd.ms-fontobject",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveMIME(tt.url, tt.contentType, tt.body)
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("resolveMIME() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("got %v, want permanent error", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, 10*time.Millisecond, func() error {
		return &RetryableError{Err: errors.New("transient")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
