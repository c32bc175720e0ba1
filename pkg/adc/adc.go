// Package adc multiplexes the single analog-to-digital converter
// across the hardware-revision, battery and ambient-light channels,
// maintains rolling averages of the converted readings, and runs the
// low-battery alert state machine.
package adc

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openwatch/sensorcore/pkg/calib"
	"github.com/openwatch/sensorcore/pkg/hal"
	"github.com/openwatch/sensorcore/pkg/notify"
	"github.com/openwatch/sensorcore/pkg/store"
)

// ErrConversionTimeout is returned when the converter never reports
// ready within the configured timeout. The original firmware waited
// forever here; the bound makes a stuck converter visible instead of
// deadlocking the calling task.
var ErrConversionTimeout = errors.New("conversion timed out")

// Default timing parameters.
const (
	DefaultConversionTimeout = 500 * time.Millisecond
	DefaultPollInterval      = time.Millisecond
	// DefaultLightSettleDelay lets the light sensor wake up before a
	// conversion; it needs about a millisecond in the dark, and the
	// original firmware allowed ten.
	DefaultLightSettleDelay = 10 * time.Millisecond
)

// Options tune the conversion cycle timing. Zero values select the
// defaults.
type Options struct {
	// ConversionTimeout bounds the converter-ready wait.
	ConversionTimeout time.Duration
	// PollInterval is the yield between busy polls.
	PollInterval time.Duration
	// LightSettleDelay runs between light sensor power-up and
	// conversion start.
	LightSettleDelay time.Duration
}

// Subsystem owns all acquisition and battery-monitoring state: the
// hardware gate, the per-channel readings and averages, the alert
// latches and the persisted thresholds.
type Subsystem struct {
	conv      hal.Converter
	cal       calib.Provider
	notifier  notify.Notifier
	powerGood func() bool

	gate   *Gate
	levels *Levels

	batteryAvg Averager
	lightAvg   Averager

	// Instantaneous readings in millivolts. Atomics so external
	// status queries read whole values without taking any lock.
	battery atomic.Uint32
	light   atomic.Uint32
	hwCfg   atomic.Uint32

	// Alert latches, owned by the monitor.
	monitorMu   sync.Mutex
	warningSent bool
	btOffSent   bool

	debug atomic.Bool

	timeout      time.Duration
	pollInterval time.Duration
	lightSettle  time.Duration
}

// New wires the subsystem to its collaborators. powerGood reports
// whether the device is on external power; nil means never charging.
func New(conv hal.Converter, st store.Store, cal calib.Provider, notifier notify.Notifier, powerGood func() bool, opts Options) *Subsystem {
	if opts.ConversionTimeout == 0 {
		opts.ConversionTimeout = DefaultConversionTimeout
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.LightSettleDelay == 0 {
		opts.LightSettleDelay = DefaultLightSettleDelay
	}
	if powerGood == nil {
		powerGood = func() bool { return false }
	}

	return &Subsystem{
		conv:         conv,
		cal:          cal,
		notifier:     notifier,
		powerGood:    powerGood,
		gate:         NewGate(),
		levels:       NewLevels(st),
		timeout:      opts.ConversionTimeout,
		pollInterval: opts.PollInterval,
		lightSettle:  opts.LightSettleDelay,
	}
}

// Initialize performs the one-time subsystem setup: thresholds are
// loaded from the store (defaults written back when absent) and all
// readings, averages and alert latches are cleared.
func (s *Subsystem) Initialize() {
	s.levels.Load()

	s.batteryAvg.Reset()
	s.lightAvg.Reset()
	s.battery.Store(0)
	s.light.Store(0)
	s.hwCfg.Store(0)

	s.monitorMu.Lock()
	s.warningSent = false
	s.btOffSent = false
	s.monitorMu.Unlock()
}

// SetDebug enables the per-evaluation battery log line and the
// pre-conversion idle checks.
func (s *Subsystem) SetDebug(enable bool) {
	s.debug.Store(enable)
}

// RunHardwareConfigCycle performs one conversion cycle on the
// board-revision channel.
func (s *Subsystem) RunHardwareConfigCycle() error {
	count, err := s.runCycle(hal.HardwareConfig, 0)
	if err != nil {
		return err
	}
	s.hwCfg.Store(uint32(CountsToVoltage(count)))
	return nil
}

// RunBatterySenseCycle performs one conversion cycle on the battery
// channel, applies the calibration offset when valid, and publishes
// the reading into the rolling average.
func (s *Subsystem) RunBatterySenseCycle() error {
	count, err := s.runCycle(hal.BatterySense, 0)
	if err != nil {
		return err
	}

	mv := CountsToBatteryVoltage(count)
	if s.cal != nil && s.cal.Valid() {
		adjusted := int(mv) + s.cal.BatteryOffset()
		if adjusted < 0 {
			adjusted = 0
		}
		mv = uint16(adjusted)
	}

	s.battery.Store(uint32(mv))
	s.batteryAvg.Publish(mv)
	return nil
}

// RunLightSenseCycle performs one conversion cycle on the ambient
// light channel and publishes the reading into the rolling average.
func (s *Subsystem) RunLightSenseCycle() error {
	count, err := s.runCycle(hal.LightSense, s.lightSettle)
	if err != nil {
		return err
	}

	mv := CountsToVoltage(count)
	s.light.Store(uint32(mv))
	s.lightAvg.Publish(mv)
	return nil
}

// runCycle executes one full enable/convert/read/disable sequence
// under the hardware gate. The gate and the sensor rails are released
// on every path, faults included.
func (s *Subsystem) runCycle(ch hal.Channel, settle time.Duration) (uint16, error) {
	s.gate.Acquire()
	defer s.gate.Release()

	if err := s.conv.EnableSensor(ch); err != nil {
		return 0, fmt.Errorf("failed to enable %s sensor: %w", ch, err)
	}
	defer func() {
		if err := s.conv.DisableSensor(ch); err != nil {
			log.Printf("Failed to disable %s sensor: %v", ch, err)
		}
		if err := s.conv.DisableReference(); err != nil {
			log.Printf("Failed to disable reference: %v", err)
		}
	}()

	if err := s.conv.EnableReference(); err != nil {
		return 0, fmt.Errorf("failed to enable reference: %w", err)
	}

	if settle > 0 {
		s.sleepInhibited(func() { time.Sleep(settle) })
	}

	if s.debug.Load() {
		if busy, err := s.conv.Busy(); err == nil && busy {
			log.Printf("Converter busy before starting %s conversion", ch)
		}
	}

	if err := s.conv.StartConversion(ch); err != nil {
		return 0, fmt.Errorf("failed to start %s conversion: %w", ch, err)
	}

	if err := s.waitConverterReady(); err != nil {
		return 0, fmt.Errorf("%s conversion: %w", ch, err)
	}

	count, err := s.conv.ReadCount(ch)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s count: %w", ch, err)
	}
	if count > MaxCount {
		return 0, fmt.Errorf("%s count out of range: %d", ch, count)
	}
	return count, nil
}

// waitConverterReady polls the converter until it reports not busy or
// the timeout elapses. Sleep is inhibited for exactly the duration of
// the wait.
func (s *Subsystem) waitConverterReady() error {
	var err error
	s.sleepInhibited(func() {
		deadline := time.Now().Add(s.timeout)
		for {
			var busy bool
			busy, err = s.conv.Busy()
			if err != nil {
				err = fmt.Errorf("busy poll: %w", err)
				return
			}
			if !busy {
				return
			}
			if time.Now().After(deadline) {
				err = ErrConversionTimeout
				return
			}
			time.Sleep(s.pollInterval)
		}
	})
	return err
}

// sleepInhibited runs fn with the platform's low-power transition
// disabled, when the converter supports that.
func (s *Subsystem) sleepInhibited(fn func()) {
	if sc, ok := s.conv.(hal.SleepController); ok {
		sc.InhibitSleep()
		defer sc.ReleaseSleep()
	}
	fn()
}

// BatteryInstant returns the most recent battery reading in
// millivolts.
func (s *Subsystem) BatteryInstant() uint16 {
	return uint16(s.battery.Load())
}

// BatteryAverage returns the rolling battery average, or the most
// recent reading while the average is not yet ready.
func (s *Subsystem) BatteryAverage() uint16 {
	return s.batteryAvg.Average()
}

// LightInstant returns the most recent light reading.
func (s *Subsystem) LightInstant() uint16 {
	return uint16(s.light.Load())
}

// LightAverage returns the rolling light average, or the most recent
// reading while the average is not yet ready.
func (s *Subsystem) LightAverage() uint16 {
	return s.lightAvg.Average()
}

// HardwareConfig returns the board-revision sense voltage.
func (s *Subsystem) HardwareConfig() uint16 {
	return uint16(s.hwCfg.Load())
}

// SetBatteryLevels updates both alert thresholds from 100 mV step
// inputs and persists them. The new thresholds take effect on the
// next monitor pass.
func (s *Subsystem) SetBatteryLevels(warningStep, btOffStep byte) {
	s.levels.Set(warningStep, btOffStep)
}

// BatteryLevels returns the current warning and radio-off thresholds
// in millivolts.
func (s *Subsystem) BatteryLevels() (warning, btOff uint16) {
	return s.levels.Levels()
}
