package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/matzehuels/langpatch/pkg/observability"
)

// progressHooks shows a spinner while a batch downloads and prints one line
// per finished batch.
type progressHooks struct {
	observability.NoopPipelineHooks

	ctx context.Context
	w   io.Writer

	mu      sync.Mutex
	spinner *Spinner
	patched int
}

func newProgressHooks(ctx context.Context, w io.Writer) *progressHooks {
	return &progressHooks{ctx: ctx, w: w}
}

func (h *progressHooks) OnFetchStart(_ context.Context, batch, archives int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
	h.spinner = newSpinnerTo(h.ctx, h.w, fmt.Sprintf("Batch %d: downloading %d archives...", batch, archives))
	h.spinner.Start()
}

func (h *progressHooks) OnFetchComplete(_ context.Context, batch, fetched, failed int, d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.spinner == nil {
		return
	}
	msg := fmt.Sprintf("Batch %d: %d archives downloaded (%s)", batch, fetched, d.Round(time.Millisecond))
	if failed > 0 {
		msg += fmt.Sprintf(", %d failed", failed)
	}
	h.spinner.StopWithSuccess(msg)
	h.spinner = nil
}

func (h *progressHooks) OnDefinitionPatched(_ context.Context, _ string, _ []string, err error) {
	if err != nil {
		return
	}
	h.mu.Lock()
	h.patched++
	h.mu.Unlock()
}

func (h *progressHooks) OnBatchComplete(_ context.Context, batch int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
	if err != nil {
		printError(h.w, "Batch %d failed: %v", batch, err)
		return
	}
	printDetail(h.w, "%d definitions patched so far", h.patched)
}

// stop clears any spinner left running by an aborted batch.
func (h *progressHooks) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

func (h *progressHooks) stopLocked() {
	if h.spinner != nil {
		h.spinner.Stop()
		h.spinner = nil
	}
}
