package adc

import "sync"

// AverageDepth is the number of samples in each rolling average.
const AverageDepth = 10

// Averager is a fixed-depth circular buffer of engineering-unit
// samples. Once the write index has wrapped for the first time the
// average covers exactly the last AverageDepth samples; before that
// Average falls back to the most recent sample.
type Averager struct {
	mu      sync.Mutex
	samples [AverageDepth]uint16
	index   int
	ready   bool
	last    uint16
}

// Publish appends a sample, advancing the circular index. The first
// wrap permanently latches the ready flag.
func (a *Averager) Publish(value uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.samples[a.index] = value
	a.last = value
	a.index++
	if a.index >= AverageDepth {
		a.index = 0
		a.ready = true
	}
}

// Average returns the truncating integer mean of the buffer once
// ready, otherwise the most recent published sample (zero before any
// publish).
func (a *Averager) Average() uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.ready {
		return a.last
	}
	var total uint32
	for _, s := range a.samples {
		total += uint32(s)
	}
	return uint16(total / AverageDepth)
}

// Ready reports whether the buffer has wrapped at least once.
func (a *Averager) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// Reset returns the averager to its initial empty state.
func (a *Averager) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.samples = [AverageDepth]uint16{}
	a.index = 0
	a.ready = false
	a.last = 0
}
