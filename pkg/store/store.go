// Package store provides the persistent key-value collaborator used
// for calibration data and battery alert thresholds.
package store

import "errors"

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is a minimal persistent key-value store. Implementations do
// not retry; a failed Put is reported once and the caller decides.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Put writes the value for key, overwriting any previous value.
	Put(key string, value []byte) error
}
