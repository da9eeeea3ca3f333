package transcript

import (
	"context"
	"strings"
	"sync"

	"github.com/lox/transcriptfmt/internal/models"
)

// Processor turns transcript input into a result.
type Processor interface {
	Process(ctx context.Context, input string) *models.TranscriptResult
}

// Coordinator owns the loading flag and the most recent result. Only one
// submission may be in flight at a time.
type Coordinator struct {
	proc Processor

	mu      sync.Mutex
	loading bool
	result  *models.TranscriptResult
}

func NewCoordinator(proc Processor) *Coordinator {
	return &Coordinator{proc: proc}
}

// Submit sends input for processing and stores the outcome. The previous
// result is cleared when the call starts. Returns ErrEmptyInput for blank
// input and ErrBusy while another submission is running; otherwise the
// returned result is also the new current result.
func (c *Coordinator) Submit(ctx context.Context, input string) (*models.TranscriptResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.loading = true
	c.result = nil
	c.mu.Unlock()

	result := c.proc.Process(ctx, input)

	c.mu.Lock()
	c.result = result
	c.loading = false
	c.mu.Unlock()
	return result, nil
}

// Loading reports whether a submission is in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Result returns a copy of the most recent result, or nil.
func (c *Coordinator) Result() *models.TranscriptResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil
	}
	r := *c.result
	return &r
}
