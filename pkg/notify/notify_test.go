package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{LowBatteryWarningHost, "low-battery-warning-host"},
		{LowBatteryWarning, "low-battery-warning"},
		{LowBatteryBtOffHost, "low-battery-btoff-host"},
		{LowBatteryBtOff, "low-battery-btoff"},
		{ResumeRadio, "resume-radio"},
		{SetVibration, "set-vibration"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestRecorder_Order(t *testing.T) {
	r := NewRecorder()

	require.NoError(t, r.Send(LowBatteryBtOffHost, []byte{0x49, 0x0C}))
	require.NoError(t, r.SendVibration(Vibration{Enable: true, Cycles: 5}))
	require.NoError(t, r.Send(ResumeRadio, nil))

	sent := r.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, LowBatteryBtOffHost, sent[0].Kind)
	assert.Equal(t, []byte{0x49, 0x0C}, sent[0].Payload)
	assert.Equal(t, SetVibration, sent[1].Kind)
	require.NotNil(t, sent[1].Vibration)
	assert.Equal(t, uint8(5), sent[1].Vibration.Cycles)
	assert.Equal(t, ResumeRadio, sent[2].Kind)

	assert.Equal(t, []Kind{LowBatteryBtOffHost, SetVibration, ResumeRadio}, r.Kinds())
}

func TestRecorder_CopiesPayload(t *testing.T) {
	r := NewRecorder()

	payload := []byte{1, 2}
	require.NoError(t, r.Send(LowBatteryWarningHost, payload))
	payload[0] = 99

	assert.Equal(t, []byte{1, 2}, r.Sent()[0].Payload)
}

func TestRecorder_Reset(t *testing.T) {
	r := NewRecorder()

	require.NoError(t, r.Send(ResumeRadio, nil))
	r.Reset()

	assert.Empty(t, r.Sent())
	assert.Empty(t, r.Kinds())
}
