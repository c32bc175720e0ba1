package adc

// Gate is the binary exclusive-access lock serializing all use of the
// single converter. Acquire blocks indefinitely; waiters are woken in
// whatever order the runtime picks, not FIFO.
type Gate struct {
	sem chan struct{}
}

// NewGate creates a free gate.
func NewGate() *Gate {
	return &Gate{sem: make(chan struct{}, 1)}
}

// Acquire blocks until the gate is free and takes it.
func (g *Gate) Acquire() {
	g.sem <- struct{}{}
}

// Release frees the gate. Releasing a free gate is a no-op, so every
// completion path can release unconditionally.
func (g *Gate) Release() {
	select {
	case <-g.sem:
	default:
	}
}

// TryAcquire takes the gate if it is free and reports whether it did.
func (g *Gate) TryAcquire() bool {
	select {
	case g.sem <- struct{}{}:
		return true
	default:
		return false
	}
}
