package adc

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwatch/sensorcore/pkg/calib"
	"github.com/openwatch/sensorcore/pkg/hal"
	"github.com/openwatch/sensorcore/pkg/notify"
	"github.com/openwatch/sensorcore/pkg/store"
)

type testRig struct {
	subsystem *Subsystem
	mock      *hal.Mock
	store     *store.Memory
	notifier  *notify.Recorder
	powerGood bool
}

func newTestRig(t *testing.T, cal calib.Provider) *testRig {
	t.Helper()

	rig := &testRig{
		mock:     hal.NewMock(),
		store:    store.NewMemory(),
		notifier: notify.NewRecorder(),
	}
	rig.subsystem = New(
		rig.mock,
		rig.store,
		cal,
		rig.notifier,
		func() bool { return rig.powerGood },
		Options{
			ConversionTimeout: 100 * time.Millisecond,
			PollInterval:      10 * time.Microsecond,
			LightSettleDelay:  time.Microsecond,
		},
	)
	rig.subsystem.Initialize()
	return rig
}

func TestRunHardwareConfigCycle(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.mock.SetCounts(hal.HardwareConfig, 1024)

	require.NoError(t, rig.subsystem.RunHardwareConfigCycle())

	assert.Equal(t, CountsToVoltage(1024), rig.subsystem.HardwareConfig())
}

func TestCycleSequence(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.mock.SetCounts(hal.BatterySense, 2400)

	require.NoError(t, rig.subsystem.RunBatterySenseCycle())

	assert.Equal(t, []string{
		"enable battery",
		"reference on",
		"start battery",
		"sleep inhibit",
		"sleep release",
		"read battery",
		"disable battery",
		"reference off",
	}, rig.mock.Trace())
}

func TestLightCycleInhibitsSleepForSettle(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.mock.SetCounts(hal.LightSense, 91)

	require.NoError(t, rig.subsystem.RunLightSenseCycle())

	// Two inhibit windows: the settle delay and the ready wait.
	assert.Equal(t, []string{
		"enable light",
		"reference on",
		"sleep inhibit",
		"sleep release",
		"start light",
		"sleep inhibit",
		"sleep release",
		"read light",
		"disable light",
		"reference off",
	}, rig.mock.Trace())

	current, _ := rig.mock.SleepDepth()
	assert.Equal(t, 0, current, "sleep inhibit must be balanced")
}

func TestBatteryCycleAppliesCalibration(t *testing.T) {
	tests := []struct {
		name   string
		cal    calib.Provider
		counts uint16
		want   uint16
	}{
		{
			name:   "no provider",
			cal:    nil,
			counts: 2400,
			want:   CountsToBatteryVoltage(2400),
		},
		{
			name:   "invalid calibration ignored",
			cal:    calib.Static{Offset: 100, IsValid: false},
			counts: 2400,
			want:   CountsToBatteryVoltage(2400),
		},
		{
			name:   "positive offset",
			cal:    calib.Static{Offset: 25, IsValid: true},
			counts: 2400,
			want:   CountsToBatteryVoltage(2400) + 25,
		},
		{
			name:   "negative offset",
			cal:    calib.Static{Offset: -40, IsValid: true},
			counts: 2400,
			want:   CountsToBatteryVoltage(2400) - 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig(t, tt.cal)
			rig.mock.SetCounts(hal.BatterySense, tt.counts)

			require.NoError(t, rig.subsystem.RunBatterySenseCycle())

			assert.Equal(t, tt.want, rig.subsystem.BatteryInstant())
		})
	}
}

func TestBatteryAverageOverElevenCycles(t *testing.T) {
	rig := newTestRig(t, calib.Static{Offset: 10, IsValid: true})

	counts := []uint16{2400, 2410, 2420, 2430, 2440, 2450, 2460, 2470, 2480, 2490, 2500}
	rig.mock.SetCounts(hal.BatterySense, counts...)

	converted := make([]uint16, len(counts))
	for i, c := range counts {
		converted[i] = CountsToBatteryVoltage(c) + 10
	}

	for i := 0; i < AverageDepth; i++ {
		require.NoError(t, rig.subsystem.RunBatterySenseCycle())
	}

	var total uint32
	for _, v := range converted[:AverageDepth] {
		total += uint32(v)
	}
	assert.Equal(t, uint16(total/AverageDepth), rig.subsystem.BatteryAverage(),
		"average after the 10th cycle covers samples 1..10")

	require.NoError(t, rig.subsystem.RunBatterySenseCycle())

	total = 0
	for _, v := range converted[1:] {
		total += uint32(v)
	}
	assert.Equal(t, uint16(total/AverageDepth), rig.subsystem.BatteryAverage(),
		"average after the 11th cycle covers samples 2..11")
}

func TestAverageBeforeReadyIsInstant(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.mock.SetCounts(hal.BatterySense, 2400)

	assert.Equal(t, uint16(0), rig.subsystem.BatteryAverage())

	require.NoError(t, rig.subsystem.RunBatterySenseCycle())
	assert.Equal(t, rig.subsystem.BatteryInstant(), rig.subsystem.BatteryAverage())
}

func TestConversionTimeout(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.mock.SetBusyPolls(1 << 30)

	err := rig.subsystem.RunBatterySenseCycle()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversionTimeout)

	// The fault path must still disable the rails and free the gate.
	trace := rig.mock.Trace()
	assert.Contains(t, trace, "disable battery")
	assert.Contains(t, trace, "reference off")
	current, _ := rig.mock.SleepDepth()
	assert.Equal(t, 0, current)

	assert.True(t, rig.subsystem.gate.TryAcquire(), "gate must be free after a timeout")
	rig.subsystem.gate.Release()
}

func TestCycleFaultReleasesEverything(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.mock.FailOn("start", errors.New("stuck peripheral"))

	err := rig.subsystem.RunLightSenseCycle()
	require.Error(t, err)

	trace := rig.mock.Trace()
	assert.Contains(t, trace, "disable light")
	assert.Contains(t, trace, "reference off")

	assert.True(t, rig.subsystem.gate.TryAcquire())
	rig.subsystem.gate.Release()
}

func TestConcurrentCyclesNeverOverlap(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.mock.SetBusyPolls(2)
	rig.mock.SetCounts(hal.BatterySense, 2400)
	rig.mock.SetCounts(hal.LightSense, 91)
	rig.mock.SetCounts(hal.HardwareConfig, 1024)

	// The mock errors a StartConversion that overlaps another, so any
	// gate violation surfaces as a cycle error.
	var wg sync.WaitGroup
	cycles := []func() error{
		rig.subsystem.RunBatterySenseCycle,
		rig.subsystem.RunLightSenseCycle,
		rig.subsystem.RunHardwareConfigCycle,
	}
	errs := make(chan error, 3*20)
	for _, cycle := range cycles {
		wg.Add(1)
		go func(cycle func() error) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				errs <- cycle()
			}
		}(cycle)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Each start must be followed by its own read before the next
	// start appears in the trace.
	var open string
	for _, event := range rig.mock.Trace() {
		if len(event) > 6 && event[:6] == "start " {
			require.Empty(t, open, "conversion started while %q still in flight", open)
			open = event[6:]
		}
		if len(event) > 5 && event[:5] == "read " {
			require.Equal(t, open, event[5:])
			open = ""
		}
	}
}

func TestInitializeResetsState(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.mock.SetCounts(hal.BatterySense, 2400)

	for i := 0; i < AverageDepth; i++ {
		require.NoError(t, rig.subsystem.RunBatterySenseCycle())
	}
	require.NotZero(t, rig.subsystem.BatteryInstant())

	rig.subsystem.Initialize()

	assert.Zero(t, rig.subsystem.BatteryInstant())
	assert.Zero(t, rig.subsystem.BatteryAverage())
	warning, btOff := rig.subsystem.BatteryLevels()
	assert.Equal(t, uint16(DefaultWarningLevel), warning)
	assert.Equal(t, uint16(DefaultBtOffLevel), btOff)
}
