package adc

// MaxCount is the full-scale 12-bit converter reading.
const MaxCount = 4095

// conversionFactor converts light and hardware-config counts against
// the 2.5 V reference into tenths of millivolts worth of scale. The
// output of CountsToVoltage is Voltage * 1000.
const conversionFactor = 2.5 * 10000.0 / 4096.0

// conversionFactorBattery accounts for the resistive divider
// (38.3k over 24.3k) in front of the battery sense input, so the
// result is the actual battery voltage in millivolts.
const conversionFactorBattery = ((24300.0 + 38300.0) * 2.5 * 1000.0) / (4095.0 * 24300.0)

// CountsToVoltage converts a raw count on the light or hardware-config
// channel to millivolts (truncates).
func CountsToVoltage(counts uint16) uint16 {
	return uint16(conversionFactor * float64(counts))
}

// CountsToBatteryVoltage converts a raw count on the battery sense
// channel to battery millivolts (truncates).
func CountsToBatteryVoltage(counts uint16) uint16 {
	return uint16(conversionFactorBattery * float64(counts))
}
