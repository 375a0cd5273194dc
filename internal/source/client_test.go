package source_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/playsift/levelscope/internal/source"
)

func newTestClient(baseURL string, pageSize int) *source.Client {
	return source.NewClient(baseURL, "test-token", pageSize,
		5*time.Second, 3, time.Millisecond, 5*time.Millisecond, zerolog.Nop())
}

func TestExportSinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("auth header = %q", got)
		}
		if got := r.URL.Query().Get("view"); got != "levels" {
			t.Errorf("view = %q", got)
		}
		if got := r.URL.Query().Get("from"); got != "2026-01-01" {
			t.Errorf("from = %q", got)
		}
		fmt.Fprint(w, "Level,Score\n1,90\n2,60\n")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 100)
	b, err := c.Export(context.Background(), "levels", source.ExportOptions{From: "2026-01-01"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if string(b) != "Level,Score\n1,90\n2,60\n" {
		t.Fatalf("body = %q", b)
	}
}

func TestExportPaginates(t *testing.T) {
	// page size 2: first page full, second page short, headers deduplicated
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		switch offset {
		case 0:
			fmt.Fprint(w, "Level,Score\n1,90\n2,60\n")
		case 2:
			fmt.Fprint(w, "Level,Score\n3,30\n")
		default:
			t.Errorf("unexpected offset %d", offset)
			http.Error(w, "bad offset", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)
	b, err := c.Export(context.Background(), "levels", source.ExportOptions{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "Level,Score\n1,90\n2,60\n3,30\n"
	if string(b) != want {
		t.Fatalf("stitched body:\ngot %q\nwant %q", b, want)
	}
}

func TestExportCountsQuotedNewlinesAsOneRow(t *testing.T) {
	// one record whose Notes field spans two lines: a line-based count
	// would see a full page and fetch a spurious second one
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, "Level,Notes\n1,\"line one\nline two\"\n")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)
	b, err := c.Export(context.Background(), "levels", source.ExportOptions{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if string(b) != "Level,Notes\n1,\"line one\nline two\"\n" {
		t.Fatalf("body = %q", b)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestExportRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "Level,Score\n1,90\n")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 100)
	b, err := c.Export(context.Background(), "levels", source.ExportOptions{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if string(b) != "Level,Score\n1,90\n" {
		t.Fatalf("body = %q", b)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestExportClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such view", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 100)
	_, err := c.Export(context.Background(), "levels", source.ExportOptions{})
	var apiErr *source.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Fatalf("404 must not be retried, calls = %d", calls.Load())
	}
}

func TestExportExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 100)
	_, err := c.Export(context.Background(), "levels", source.ExportOptions{})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestExportRequiresViewID(t *testing.T) {
	c := newTestClient("http://localhost:1", 100)
	if _, err := c.Export(context.Background(), "", source.ExportOptions{}); err == nil {
		t.Fatal("expected error for empty view id")
	}
}
