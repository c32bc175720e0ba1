package notify

import (
	"encoding/hex"
	"log"
)

// Ensure Logger implements Notifier.
var _ Notifier = (*Logger)(nil)

// Logger writes notifications to the process log instead of a
// transport. Useful for bring-up on a bench without a broker.
type Logger struct{}

func (Logger) Send(kind Kind, payload []byte) error {
	if len(payload) == 0 {
		log.Printf("notify: %s", kind)
		return nil
	}
	log.Printf("notify: %s payload=%s", kind, hex.EncodeToString(payload))
	return nil
}

func (Logger) SendVibration(v Vibration) error {
	log.Printf("notify: %s on=%dms off=%dms cycles=%d", SetVibration, v.OnDurationMs, v.OffDurationMs, v.Cycles)
	return nil
}
