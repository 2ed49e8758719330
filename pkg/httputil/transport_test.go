package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/langpatch/pkg/observability"
)

type recordingHooks struct {
	mu        sync.Mutex
	requests  []string
	responses []int
	errors    int
}

func (h *recordingHooks) OnRequest(_ context.Context, method, _, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, code int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, code)
}

func (h *recordingHooks) OnError(context.Context, string, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestClientHooksAndUserAgent(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{UserAgent: "langpatch-test"})
	resp, err := client.Get(srv.URL + "/old")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	resp.Body.Close()

	if gotUA != "langpatch-test" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "langpatch-test")
	}
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTeapot)
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.requests) != 2 || hooks.requests[0] != "GET /old" || hooks.requests[1] != "GET /new" {
		t.Errorf("requests = %v, want [GET /old GET /new]", hooks.requests)
	}
	if len(hooks.responses) != 2 || hooks.responses[1] != http.StatusTeapot {
		t.Errorf("responses = %v", hooks.responses)
	}
}

func TestClientTransportError(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := NewClient(ClientOptions{}).Get(url); err == nil {
		t.Fatal("Get() against a closed server should fail")
	}
	if hooks.errors != 1 {
		t.Errorf("errors = %d, want 1", hooks.errors)
	}
}

func TestClientInsecure(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	if _, err := NewClient(ClientOptions{}).Get(srv.URL); err == nil {
		t.Error("self-signed certificate should be rejected by default")
	}
	resp, err := NewClient(ClientOptions{Insecure: true}).Get(srv.URL)
	if err != nil {
		t.Fatalf("insecure Get() error: %v", err)
	}
	resp.Body.Close()
}
