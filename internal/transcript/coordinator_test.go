package transcript

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/transcriptfmt/internal/models"
)

type fakeProcessor struct {
	mu      sync.Mutex
	inputs  []string
	started chan struct{}
	release chan struct{}
	result  func(input string) *models.TranscriptResult
}

func (f *fakeProcessor) Process(ctx context.Context, input string) *models.TranscriptResult {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.result != nil {
		return f.result(input)
	}
	return &models.TranscriptResult{Input: input, Content: "<p>" + input + "</p>", Success: true}
}

func TestCoordinator_EmptyInput(t *testing.T) {
	proc := &fakeProcessor{}
	c := NewCoordinator(proc)

	for _, in := range []string{"", "   ", "\n\t"} {
		result, err := c.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Nil(t, result)
	}
	assert.Empty(t, proc.inputs)
	assert.Nil(t, c.Result())
}

func TestCoordinator_StoresLatestResult(t *testing.T) {
	proc := &fakeProcessor{}
	c := NewCoordinator(proc)

	first, err := c.Submit(context.Background(), " one ")
	require.NoError(t, err)
	assert.Equal(t, "<p>one</p>", first.Content)

	_, err = c.Submit(context.Background(), "two")
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two"}, proc.inputs)
	assert.Equal(t, "<p>two</p>", c.Result().Content)
	assert.False(t, c.Loading())
}

func TestCoordinator_FailureReplacesSuccess(t *testing.T) {
	fail := false
	proc := &fakeProcessor{}
	proc.result = func(input string) *models.TranscriptResult {
		if fail {
			return &models.TranscriptResult{Input: input, Error: "API request failed with status 500"}
		}
		return &models.TranscriptResult{Input: input, Content: "<p>ok</p>", Success: true}
	}
	c := NewCoordinator(proc)

	_, err := c.Submit(context.Background(), "a")
	require.NoError(t, err)
	fail = true
	_, err = c.Submit(context.Background(), "b")
	require.NoError(t, err)

	r := c.Result()
	assert.False(t, r.Success)
	assert.Empty(t, r.Content)
	assert.Equal(t, "API request failed with status 500", r.Error)
}

func TestCoordinator_RejectsWhileLoading(t *testing.T) {
	proc := &fakeProcessor{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := NewCoordinator(proc)

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), "slow")
		done <- err
	}()

	<-proc.started
	assert.True(t, c.Loading())
	assert.Nil(t, c.Result(), "previous result is cleared while loading")

	_, err := c.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(proc.release)
	require.NoError(t, <-done)
	assert.False(t, c.Loading())
	assert.Equal(t, []string{"slow"}, proc.inputs)
}

func TestCoordinator_ResultIsCopy(t *testing.T) {
	c := NewCoordinator(&fakeProcessor{})
	_, err := c.Submit(context.Background(), "x")
	require.NoError(t, err)

	r := c.Result()
	r.Content = "mutated"
	assert.Equal(t, "<p>x</p>", c.Result().Content)
}
