// Package calib exposes the per-device battery calibration offset.
// The offset compensates manufacturing tolerance on the battery sense
// divider and is applied only when flagged valid.
package calib

import (
	"encoding/binary"
	"log"

	"github.com/openwatch/sensorcore/pkg/store"
)

// Key is the store key holding the 2-byte little-endian signed
// battery offset in millivolts.
const Key = "calibration.battery_offset"

// Provider supplies the battery calibration offset.
type Provider interface {
	// Valid reports whether calibration data exists for this device.
	Valid() bool
	// BatteryOffset returns the battery offset in millivolts. The
	// value is meaningless when Valid reports false.
	BatteryOffset() int
}

// Static is a fixed-value Provider, mainly for tests and bring-up.
type Static struct {
	Offset  int
	IsValid bool
}

func (s Static) Valid() bool        { return s.IsValid }
func (s Static) BatteryOffset() int { return s.Offset }

// Ensure both providers satisfy the interface.
var (
	_ Provider = Static{}
	_ Provider = (*StoreProvider)(nil)
)

// StoreProvider reads the offset from the persistent store once at
// construction. Calibration is written during manufacturing and never
// changes at runtime.
type StoreProvider struct {
	offset int
	valid  bool
}

// NewStoreProvider loads the calibration offset from s. A missing key
// yields an invalid (unused) calibration; a read failure is logged and
// treated the same way.
func NewStoreProvider(s store.Store) *StoreProvider {
	data, err := s.Get(Key)
	if err != nil {
		if err != store.ErrNotFound {
			log.Printf("Failed to read battery calibration: %v", err)
		}
		return &StoreProvider{}
	}
	if len(data) != 2 {
		log.Printf("Ignoring battery calibration with unexpected length %d", len(data))
		return &StoreProvider{}
	}
	return &StoreProvider{
		offset: int(int16(binary.LittleEndian.Uint16(data))),
		valid:  true,
	}
}

func (p *StoreProvider) Valid() bool        { return p.valid }
func (p *StoreProvider) BatteryOffset() int { return p.offset }
