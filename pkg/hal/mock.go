package hal

import (
	"fmt"
	"sync"
)

// Ensure Mock implements the converter capability interface.
var _ Converter = (*Mock)(nil)
var _ SleepController = (*Mock)(nil)

// Mock simulates the converter for testing and development. Counts are
// programmable per channel, and every call is recorded so tests can
// assert on sequencing.
type Mock struct {
	mu sync.Mutex

	counts    map[Channel][]uint16 // queued results, last value repeats
	busyPolls int                  // Busy() returns true this many times per conversion

	sensorOn    map[Channel]bool
	referenceOn bool
	converting  bool
	pollsLeft   int
	current     Channel

	sleepDepth    int
	maxSleepDepth int

	trace []string

	// Errors to inject, keyed by call name ("start", "read", ...).
	failures map[string]error
}

// NewMock creates a mock converter that immediately reports ready and
// returns zero counts until programmed.
func NewMock() *Mock {
	return &Mock{
		counts:   make(map[Channel][]uint16),
		sensorOn: make(map[Channel]bool),
		failures: make(map[string]error),
	}
}

// SetCounts programs the raw conversion results for a channel,
// replacing anything queued before. The last value repeats once the
// queue drains.
func (m *Mock) SetCounts(ch Channel, counts ...uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	queue := make([]uint16, len(counts))
	copy(queue, counts)
	m.counts[ch] = queue
}

// SetBusyPolls makes Busy report true the given number of times after
// each StartConversion before going ready.
func (m *Mock) SetBusyPolls(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busyPolls = n
}

// FailOn injects an error for the named call: "enable", "disable",
// "reference", "start", "busy" or "read".
func (m *Mock) FailOn(call string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[call] = err
}

// Trace returns the recorded call sequence.
func (m *Mock) Trace() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.trace))
	copy(out, m.trace)
	return out
}

// ResetTrace clears the recorded call sequence.
func (m *Mock) ResetTrace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trace = m.trace[:0]
}

// SleepDepth returns the current and maximum observed sleep-inhibit
// nesting depth.
func (m *Mock) SleepDepth() (current, max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sleepDepth, m.maxSleepDepth
}

func (m *Mock) record(format string, args ...interface{}) {
	m.trace = append(m.trace, fmt.Sprintf(format, args...))
}

func (m *Mock) EnableSensor(ch Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("enable %s", ch)
	if err := m.failures["enable"]; err != nil {
		return err
	}
	m.sensorOn[ch] = true
	return nil
}

func (m *Mock) DisableSensor(ch Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("disable %s", ch)
	if err := m.failures["disable"]; err != nil {
		return err
	}
	m.sensorOn[ch] = false
	return nil
}

func (m *Mock) EnableReference() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("reference on")
	if err := m.failures["reference"]; err != nil {
		return err
	}
	m.referenceOn = true
	return nil
}

func (m *Mock) DisableReference() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("reference off")
	m.referenceOn = false
	m.converting = false
	return nil
}

func (m *Mock) StartConversion(ch Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("start %s", ch)
	if err := m.failures["start"]; err != nil {
		return err
	}
	if m.converting {
		return fmt.Errorf("conversion already in progress on %s", m.current)
	}
	m.converting = true
	m.current = ch
	m.pollsLeft = m.busyPolls
	return nil
}

func (m *Mock) Busy() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["busy"]; err != nil {
		return false, err
	}
	if !m.converting {
		return false, nil
	}
	if m.pollsLeft > 0 {
		m.pollsLeft--
		return true, nil
	}
	return false, nil
}

func (m *Mock) ReadCount(ch Channel) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("read %s", ch)
	if err := m.failures["read"]; err != nil {
		return 0, err
	}
	m.converting = false
	queue := m.counts[ch]
	if len(queue) == 0 {
		return 0, nil
	}
	count := queue[0]
	if len(queue) > 1 {
		m.counts[ch] = queue[1:]
	}
	return count, nil
}

func (m *Mock) InhibitSleep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("sleep inhibit")
	m.sleepDepth++
	if m.sleepDepth > m.maxSleepDepth {
		m.maxSleepDepth = m.sleepDepth
	}
}

func (m *Mock) ReleaseSleep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("sleep release")
	m.sleepDepth--
}
