// Package notify carries asynchronous notifications out of the
// acquisition core: low-battery alerts to the host and the local
// display, radio resume requests, and vibration patterns.
package notify

import "sync"

// Kind identifies a notification.
type Kind int

const (
	// LowBatteryWarningHost carries the averaged battery millivolts to
	// the connected host.
	LowBatteryWarningHost Kind = iota
	// LowBatteryWarning is the local/display variant of the warning.
	LowBatteryWarning
	// LowBatteryBtOffHost carries the averaged battery millivolts to
	// the host before the radio is shut down.
	LowBatteryBtOffHost
	// LowBatteryBtOff is the local/display variant of the radio-off
	// alert.
	LowBatteryBtOff
	// ResumeRadio asks the system to re-enable the radio link after
	// external power returns.
	ResumeRadio
	// SetVibration requests a vibration pattern; sent via
	// Notifier.SendVibration.
	SetVibration
)

// String returns the notification name used in topics and logs.
func (k Kind) String() string {
	switch k {
	case LowBatteryWarningHost:
		return "low-battery-warning-host"
	case LowBatteryWarning:
		return "low-battery-warning"
	case LowBatteryBtOffHost:
		return "low-battery-btoff-host"
	case LowBatteryBtOff:
		return "low-battery-btoff"
	case ResumeRadio:
		return "resume-radio"
	case SetVibration:
		return "set-vibration"
	default:
		return "unknown"
	}
}

// Vibration describes one vibration request as explicit fields.
type Vibration struct {
	Enable        bool   `json:"enable"`
	OnDurationMs  uint16 `json:"on_duration_ms"`
	OffDurationMs uint16 `json:"off_duration_ms"`
	Cycles        uint8  `json:"cycles"`
}

// Notifier delivers notifications to the rest of the system. Sends are
// fire-and-forget from the caller's point of view; a failed send is
// reported but never retried by this core.
type Notifier interface {
	Send(kind Kind, payload []byte) error
	SendVibration(v Vibration) error
}

// Sent is one notification captured by a Recorder.
type Sent struct {
	Kind      Kind
	Payload   []byte
	Vibration *Vibration
}

// Ensure Recorder implements Notifier.
var _ Notifier = (*Recorder)(nil)

// Recorder is a Notifier that keeps everything it was asked to send,
// in order. Used by tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(kind Kind, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := make([]byte, len(payload))
	copy(p, payload)
	r.sent = append(r.sent, Sent{Kind: kind, Payload: p})
	return nil
}

func (r *Recorder) SendVibration(v Vibration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Kind: SetVibration, Vibration: &v})
	return nil
}

// Sent returns the notifications recorded so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// Kinds returns just the kinds of the recorded notifications.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.sent))
	for i, s := range r.sent {
		out[i] = s.Kind
	}
	return out
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
