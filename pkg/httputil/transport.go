package httputil

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/matzehuels/langpatch/pkg/observability"
)

// DefaultUserAgent is sent when no other User-Agent is configured.
const DefaultUserAgent = "langpatch"

// ClientOptions configures [NewClient].
type ClientOptions struct {
	// Timeout bounds a whole request including reading the body. Zero
	// means no limit; callers may bound requests with a context instead.
	Timeout time.Duration
	// Insecure disables TLS certificate verification.
	Insecure bool
	// UserAgent overrides [DefaultUserAgent].
	UserAgent string
}

// NewClient returns an *http.Client that follows redirects, sets the
// User-Agent, and reports every round trip to [observability.HTTP].
func NewClient(opts ClientOptions) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Insecure {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: &Transport{Base: base, UserAgent: ua},
	}
}

// Transport is an http.RoundTripper that emits observability events.
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.UserAgent)
	}

	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}
