package adc

import (
	"encoding/binary"
	"log"
	"sync/atomic"

	"github.com/openwatch/sensorcore/pkg/store"
)

// Store keys for the two battery alert thresholds, each persisted as
// a 2-byte little-endian millivolt value.
const (
	KeyWarningLevel = "battery.warning_level"
	KeyBtOffLevel   = "battery.btoff_level"
)

// Default battery alert thresholds in millivolts.
const (
	DefaultWarningLevel = 3500
	DefaultBtOffLevel   = 3300
)

// Levels holds the two battery alert thresholds, backed by the
// persistent store. The in-memory values are atomics so the monitor
// and concurrent status readers never see a torn value.
type Levels struct {
	store   store.Store
	warning atomic.Uint32
	btOff   atomic.Uint32
}

// NewLevels creates the threshold pair with defaults in effect until
// Load is called.
func NewLevels(st store.Store) *Levels {
	l := &Levels{store: st}
	l.warning.Store(DefaultWarningLevel)
	l.btOff.Store(DefaultBtOffLevel)
	return l
}

// Load reads both thresholds from the store. A missing key keeps its
// default and writes it back; store failures degrade silently to the
// defaults beyond a log line.
func (l *Levels) Load() {
	l.warning.Store(uint32(l.loadLevel(KeyWarningLevel, DefaultWarningLevel)))
	l.btOff.Store(uint32(l.loadLevel(KeyBtOffLevel, DefaultBtOffLevel)))
}

func (l *Levels) loadLevel(key string, def uint16) uint16 {
	data, err := l.store.Get(key)
	if err == store.ErrNotFound {
		if err := l.store.Put(key, encodeMillivolts(def)); err != nil {
			log.Printf("Failed to persist default for %s: %v", key, err)
		}
		return def
	}
	if err != nil {
		log.Printf("Failed to read %s, using default: %v", key, err)
		return def
	}
	if len(data) != 2 {
		log.Printf("Ignoring %s with unexpected length %d", key, len(data))
		return def
	}
	return binary.LittleEndian.Uint16(data)
}

// Levels returns the current warning and radio-off thresholds in
// millivolts.
func (l *Levels) Levels() (warning, btOff uint16) {
	return uint16(l.warning.Load()), uint16(l.btOff.Load())
}

// Set converts the 100 mV step inputs to absolute millivolts, makes
// them effective immediately, and persists both values.
func (l *Levels) Set(warningStep, btOffStep byte) {
	warning := uint16(warningStep) * 100
	btOff := uint16(btOffStep) * 100

	l.warning.Store(uint32(warning))
	l.btOff.Store(uint32(btOff))

	if err := l.store.Put(KeyWarningLevel, encodeMillivolts(warning)); err != nil {
		log.Printf("Failed to persist %s: %v", KeyWarningLevel, err)
	}
	if err := l.store.Put(KeyBtOffLevel, encodeMillivolts(btOff)); err != nil {
		log.Printf("Failed to persist %s: %v", KeyBtOffLevel, err)
	}
}

// encodeMillivolts is the 2-byte little-endian encoding shared by the
// threshold store and the host notification payloads.
func encodeMillivolts(mv uint16) []byte {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, mv)
	return payload
}
