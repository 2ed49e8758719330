// Package fetch downloads source archives in parallel.
//
// Each transfer has its own time budget. A transfer that fails before any
// byte reaches disk is retried; once bytes have been written the partial
// file is kept and reported, because a truncated archive still lists its
// leading members.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/langpatch/pkg/errors"
	"github.com/matzehuels/langpatch/pkg/httputil"
)

// Defaults for [Options].
const (
	DefaultParallel   = 16
	DefaultMaxTime    = 60 * time.Second
	DefaultAttempts   = 2
	DefaultRetryDelay = time.Second
)

// Request asks for URL to be written to Dest.
type Request struct {
	URL  string
	Dest string
}

// Result reports the outcome of one [Request].
type Result struct {
	Request
	// Bytes is the size of the file left at Dest.
	Bytes int64
	// Partial is set when the transfer was interrupted after bytes were written.
	Partial  bool
	Duration time.Duration
	Err      error
}

// OK reports whether a complete file was downloaded.
func (r Result) OK() bool { return r.Err == nil && !r.Partial }

// Usable reports whether Dest holds any bytes worth inspecting.
func (r Result) Usable() bool { return r.Bytes > 0 }

// Options configures a [Fetcher]. Zero values select the defaults.
type Options struct {
	Parallel   int
	MaxTime    time.Duration
	Attempts   int
	RetryDelay time.Duration
	Insecure   bool
	UserAgent  string
	// Client overrides the HTTP client built from Insecure and UserAgent.
	Client *http.Client
	Logger *log.Logger
}

// Fetcher downloads batches of requests.
type Fetcher struct {
	client     *http.Client
	parallel   int
	maxTime    time.Duration
	attempts   int
	retryDelay time.Duration
	logger     *log.Logger
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	f := &Fetcher{
		client:     opts.Client,
		parallel:   opts.Parallel,
		maxTime:    opts.MaxTime,
		attempts:   opts.Attempts,
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
	}
	if f.client == nil {
		f.client = httputil.NewClient(httputil.ClientOptions{
			Insecure:  opts.Insecure,
			UserAgent: opts.UserAgent,
		})
	}
	if f.parallel <= 0 {
		f.parallel = DefaultParallel
	}
	if f.maxTime <= 0 {
		f.maxTime = DefaultMaxTime
	}
	if f.attempts <= 0 {
		f.attempts = DefaultAttempts
	}
	if f.retryDelay <= 0 {
		f.retryDelay = DefaultRetryDelay
	}
	if f.logger == nil {
		f.logger = log.Default()
	}
	return f
}

// Fetch downloads every request and returns one result per request, in
// request order. Failures are per item; Fetch itself never fails.
func (f *Fetcher) Fetch(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	var g errgroup.Group
	g.SetLimit(f.parallel)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, req)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, req Request) Result {
	ctx, cancel := context.WithTimeout(ctx, f.maxTime)
	defer cancel()

	res := Result{Request: req}
	start := time.Now()
	err := httputil.Retry(ctx, f.attempts, f.retryDelay, func() error {
		return f.attempt(ctx, &res)
	})
	res.Duration = time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = errs.Wrap(errs.ErrCodeTimeout, err, "fetch %s exceeded %s", req.URL, f.maxTime)
		} else {
			err = errs.Wrap(errs.ErrCodeNetwork, err, "fetch %s", req.URL)
		}
		res.Err = err
	}

	switch {
	case res.Err == nil:
		f.logger.Debug("downloaded", "url", req.URL, "bytes", res.Bytes, "took", res.Duration.Round(time.Millisecond))
	case res.Partial:
		f.logger.Warn("partial download", "url", req.URL, "bytes", res.Bytes, "err", res.Err)
	default:
		f.logger.Warn("download failed", "url", req.URL, "err", res.Err)
	}
	return res
}

func (f *Fetcher) attempt(ctx context.Context, res *Result) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, res.URL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return httputil.Retryable(fmt.Errorf("%w: %v", httputil.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		return err
	}

	out, err := os.Create(res.Dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", res.Dest, err)
	}
	n, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	res.Bytes = n

	if copyErr != nil {
		if n == 0 {
			_ = os.Remove(res.Dest)
			return httputil.Retryable(fmt.Errorf("%w: %v", httputil.ErrNetwork, copyErr))
		}
		res.Partial = true
		return copyErr
	}
	return closeErr
}
