package adc

import (
	"log"

	"github.com/openwatch/sensorcore/pkg/notify"
)

// Vibration patterns for the two alerts: short ticks for the radio-off
// alert, longer ones for the warning, five cycles each.
var (
	btOffVibration = notify.Vibration{
		Enable:        true,
		OnDurationMs:  0x0100,
		OffDurationMs: 0x0100,
		Cycles:        5,
	}
	warningVibration = notify.Vibration{
		Enable:        true,
		OnDurationMs:  0x0200,
		OffDurationMs: 0x0200,
		Cycles:        5,
	}
)

// EvaluateLowBatteryAlert runs one pass of the low-battery state
// machine. The caller invokes it periodically.
//
// On external power both alert latches clear, and if the radio-off
// alert had fired a single ResumeRadio notification goes out. Off
// external power, the radio-off threshold is evaluated before the
// warning threshold so that a simultaneous double-crossing emits the
// radio-off alert first. Latches are sticky: a reading recovering
// above a threshold never rearms an alert, only external power does.
func (s *Subsystem) EvaluateLowBatteryAlert() {
	average := s.BatteryAverage()

	if s.debug.Load() {
		// Readings are meaningless without a battery present, and the
		// radio cannot start below 2.8 V from a bench supply.
		log.Printf("Batt Inst: %d mV Batt Avg: %d mV", s.BatteryInstant(), average)
	}

	s.monitorMu.Lock()
	defer s.monitorMu.Unlock()

	if s.powerGood() {
		if s.btOffSent {
			s.send(notify.ResumeRadio, nil)
		}
		s.warningSent = false
		s.btOffSent = false
		return
	}

	warningLevel, btOffLevel := s.levels.Levels()

	if average < btOffLevel && !s.btOffSent {
		s.btOffSent = true
		s.send(notify.LowBatteryBtOffHost, encodeMillivolts(average))
		s.send(notify.LowBatteryBtOff, nil)
		s.sendVibration(btOffVibration)
	}

	if average < warningLevel && !s.warningSent {
		s.warningSent = true
		s.send(notify.LowBatteryWarningHost, encodeMillivolts(average))
		s.send(notify.LowBatteryWarning, nil)
		s.sendVibration(warningVibration)
	}
}

func (s *Subsystem) send(kind notify.Kind, payload []byte) {
	if err := s.notifier.Send(kind, payload); err != nil {
		log.Printf("Failed to send %s notification: %v", kind, err)
	}
}

func (s *Subsystem) sendVibration(v notify.Vibration) {
	if err := s.notifier.SendVibration(v); err != nil {
		log.Printf("Failed to send vibration request: %v", err)
	}
}
