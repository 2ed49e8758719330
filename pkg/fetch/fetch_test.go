package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/langpatch/pkg/errors"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newFetcher(opts Options) *Fetcher {
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Millisecond
	}
	opts.Logger = quietLogger()
	return New(opts)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/b", http.StatusMovedPermanently)
		case "/missing":
			http.NotFound(w, r)
		default:
			_, _ = w.Write([]byte("body of " + r.URL.Path))
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	reqs := []Request{
		{URL: srv.URL + "/a", Dest: filepath.Join(dir, "a")},
		{URL: srv.URL + "/redirect", Dest: filepath.Join(dir, "r")},
		{URL: srv.URL + "/missing", Dest: filepath.Join(dir, "m")},
	}
	results := newFetcher(Options{}).Fetch(context.Background(), reqs)

	if len(results) != len(reqs) {
		t.Fatalf("got %d results, want %d", len(results), len(reqs))
	}
	for i, res := range results {
		if res.URL != reqs[i].URL {
			t.Errorf("result %d is for %s, want %s", i, res.URL, reqs[i].URL)
		}
	}

	for i, want := range []string{"body of /a", "body of /b"} {
		if !results[i].OK() {
			t.Errorf("%s: %v", reqs[i].URL, results[i].Err)
			continue
		}
		got, _ := os.ReadFile(reqs[i].Dest)
		if string(got) != want {
			t.Errorf("%s content = %q, want %q", reqs[i].URL, got, want)
		}
		if results[i].Bytes != int64(len(want)) {
			t.Errorf("%s bytes = %d, want %d", reqs[i].URL, results[i].Bytes, len(want))
		}
	}

	if results[2].OK() || results[2].Usable() {
		t.Errorf("missing: %+v, want failure without bytes", results[2])
	}
	if _, err := os.Stat(reqs[2].Dest); !os.IsNotExist(err) {
		t.Error("missing: no file should be created")
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "x")
	res := newFetcher(Options{Attempts: 3}).Fetch(context.Background(), []Request{{URL: srv.URL, Dest: dest}})[0]
	if !res.OK() {
		t.Fatalf("Fetch() = %+v", res)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestFetchDoesNotRetryPermanentFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	res := newFetcher(Options{Attempts: 3}).Fetch(context.Background(), []Request{{URL: srv.URL, Dest: filepath.Join(t.TempDir(), "x")}})[0]
	if res.Err == nil {
		t.Fatal("403 should fail")
	}
	if !errs.Is(res.Err, errs.ErrCodeNetwork) {
		t.Errorf("error = %v, want NETWORK_ERROR", res.Err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestFetchKeepsPartialFile(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "x")
	res := newFetcher(Options{Attempts: 3}).Fetch(context.Background(), []Request{{URL: srv.URL, Dest: dest}})[0]

	if !res.Partial || res.Err == nil {
		t.Fatalf("Fetch() = %+v, want partial failure", res)
	}
	if !res.Usable() || res.OK() {
		t.Errorf("partial result should be usable but not OK: %+v", res)
	}
	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("partial file removed: %v", err)
	}
	if info.Size() != 100 || res.Bytes != 100 {
		t.Errorf("size = %d, bytes = %d; want 100", info.Size(), res.Bytes)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1 (no retry once bytes are written)", n)
	}
}

func TestFetchTimeoutKeepsPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("0123456789"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "x")
	res := newFetcher(Options{MaxTime: 200 * time.Millisecond}).Fetch(context.Background(), []Request{{URL: srv.URL, Dest: dest}})[0]

	if res.Err == nil || !res.Partial {
		t.Fatalf("Fetch() = %+v, want partial timeout", res)
	}
	if res.Bytes != 10 {
		t.Errorf("bytes = %d, want 10", res.Bytes)
	}
}

func TestFetchTimeoutBeforeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "x")
	res := newFetcher(Options{MaxTime: 100 * time.Millisecond}).Fetch(context.Background(), []Request{{URL: srv.URL, Dest: dest}})[0]

	if res.Err == nil || res.Usable() {
		t.Fatalf("Fetch() = %+v, want failure without bytes", res)
	}
	if !errs.Is(res.Err, errs.ErrCodeTimeout) {
		t.Errorf("error = %v, want TIMEOUT", res.Err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("no file should be left behind")
	}
}

func TestFetchParallelLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	var reqs []Request
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		reqs = append(reqs, Request{URL: srv.URL + "/" + name, Dest: filepath.Join(dir, name)})
	}
	for _, res := range newFetcher(Options{Parallel: 2}).Fetch(context.Background(), reqs) {
		if !res.OK() {
			t.Errorf("%s: %v", res.URL, res.Err)
		}
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestNewDefaults(t *testing.T) {
	f := New(Options{})
	if f.parallel != DefaultParallel || f.maxTime != DefaultMaxTime || f.attempts != DefaultAttempts {
		t.Errorf("defaults not applied: %+v", f)
	}
	if f.client == nil || f.logger == nil {
		t.Error("client and logger should be set")
	}
}
