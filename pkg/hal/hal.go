package hal

// Channel identifies one of the analog inputs multiplexed onto the
// single converter.
type Channel int

const (
	// HardwareConfig senses the board-revision voltage divider.
	HardwareConfig Channel = iota
	// BatterySense senses the divided battery voltage.
	BatterySense
	// LightSense senses the ambient light sensor.
	LightSense
)

// String returns the channel name used in logs and the serial protocol.
func (c Channel) String() string {
	switch c {
	case HardwareConfig:
		return "hwcfg"
	case BatterySense:
		return "battery"
	case LightSense:
		return "light"
	default:
		return "unknown"
	}
}

// Converter is the capability interface for the analog-to-digital
// converter and its sensor power rails. Implementations are hardware
// adapters (or mocks); callers are responsible for serializing access
// to the single physical converter.
type Converter interface {
	// EnableSensor powers the sensor path for the given channel.
	EnableSensor(ch Channel) error
	// DisableSensor powers down the sensor path for the given channel.
	DisableSensor(ch Channel) error
	// EnableReference turns on the shared voltage reference.
	EnableReference() error
	// DisableReference turns off the shared voltage reference and the
	// converter itself.
	DisableReference() error
	// StartConversion begins a single conversion on the given channel.
	StartConversion(ch Channel) error
	// Busy reports whether a conversion is still in progress.
	Busy() (bool, error)
	// ReadCount returns the raw 12-bit conversion result (0-4095) for
	// the given channel.
	ReadCount(ch Channel) (uint16, error)
}

// SleepController is implemented by converters whose platform must be
// kept out of low-power mode while a conversion is polled. Calls nest;
// every InhibitSleep is paired with exactly one ReleaseSleep.
type SleepController interface {
	InhibitSleep()
	ReleaseSleep()
}
