package clipboard

import (
	"sync"
	"time"
)

// CopiedDuration is how long the copied indicator stays on after a copy.
const CopiedDuration = 2 * time.Second

// Indicator is the transient "copied" flag. Each Set schedules its own
// reset; a later Set does not cancel or extend an earlier timer, so the flag
// clears CopiedDuration after the first of several quick copies.
// TODO: decide whether repeated copies should restart the timer instead.
type Indicator struct {
	mu       sync.Mutex
	copied   bool
	delay    time.Duration
	schedule func(time.Duration, func())
}

func NewIndicator() *Indicator {
	return &Indicator{
		delay: CopiedDuration,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Set turns the indicator on and schedules an independent reset.
func (i *Indicator) Set() {
	i.mu.Lock()
	i.copied = true
	i.mu.Unlock()

	i.schedule(i.delay, i.clear)
}

// Copied reports whether the indicator is currently on.
func (i *Indicator) Copied() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.copied
}

func (i *Indicator) clear() {
	i.mu.Lock()
	i.copied = false
	i.mu.Unlock()
}
