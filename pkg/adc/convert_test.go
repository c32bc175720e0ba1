package adc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountsToVoltage(t *testing.T) {
	tests := []struct {
		name   string
		counts uint16
		want   uint16
	}{
		{
			name:   "zero counts",
			counts: 0,
			want:   0,
		},
		{
			name:   "full scale",
			counts: 4095,
			want:   24993, // floor(4095 * 2.5 * 10000 / 4096)
		},
		{
			name:   "office light level",
			counts: 91,
			want:   555, // floor(91 * 6.103515625)
		},
		{
			name:   "mid scale",
			counts: 2048,
			want:   12500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountsToVoltage(tt.counts))
		})
	}
}

func TestCountsToBatteryVoltage(t *testing.T) {
	tests := []struct {
		name   string
		counts uint16
		want   uint16
	}{
		{
			name:   "zero counts",
			counts: 0,
			want:   0,
		},
		{
			name:   "full scale",
			counts: 4095,
			want:   6440, // floor(156500000 / 24300 / 1000) mV at full scale
		},
		{
			name:   "nominal battery",
			counts: 2400,
			want:   3774, // floor(2400 * 1.57273007...)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountsToBatteryVoltage(tt.counts))
		})
	}
}
