//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcHwCfg   machine.ADC
	adcBattery machine.ADC
	adcLight   machine.ADC
	uart       = machine.UART0

	// Conversion state
	converting      bool
	conversionStart time.Time
	results         [3]uint16

	// Serial buffer for reading command lines
	serialBuffer [8]byte
	serialPos    int
)

func main() {
	// Sensor rail switches as outputs, off at boot
	PIN_HWCFG_EN.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_BATTERY_EN.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_LIGHT_EN.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_REFERENCE_EN.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_HWCFG_EN.Low()
	PIN_BATTERY_EN.Low()
	PIN_LIGHT_EN.Low()
	PIN_REFERENCE_EN.Low()

	// Configure ADC pins with the highest resolution
	PIN_HWCFG_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_BATTERY_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_LIGHT_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcHwCfg = machine.ADC{Pin: PIN_HWCFG_ADC}
	adcBattery = machine.ADC{Pin: PIN_BATTERY_ADC}
	adcLight = machine.ADC{Pin: PIN_LIGHT_ADC}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	adcHwCfg.Configure(adcConfig)
	adcBattery.Configure(adcConfig)
	adcLight.Configure(adcConfig)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	for {
		processSerial()
		time.Sleep(100 * time.Microsecond)
	}
}

func processSerial() {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if serialPos > 0 {
				handleCommand()
			}
			serialPos = 0
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		}
	}
}

// handleCommand dispatches one command line:
//
//	E <ch>  enable sensor rail
//	D <ch>  disable sensor rail
//	V 1|0   reference on/off
//	S <ch>  start a conversion
//	B       busy query
//	R <ch>  read last result
func handleCommand() {
	cmd := serialBuffer[0]

	switch cmd {
	case 'B':
		if converting && time.Since(conversionStart) < CONVERSION_TIME_US*time.Microsecond {
			print("1\n")
		} else {
			converting = false
			print("0\n")
		}
	case 'E', 'D', 'S', 'R':
		ch, ok := parseChannel()
		if !ok {
			print("ERR bad channel\n")
			return
		}
		switch cmd {
		case 'E':
			railPin(ch).High()
			print("OK\n")
		case 'D':
			railPin(ch).Low()
			print("OK\n")
		case 'S':
			if converting {
				print("ERR busy\n")
				return
			}
			results[ch] = sample(ch)
			converting = true
			conversionStart = time.Now()
			print("OK\n")
		case 'R':
			print(results[ch])
			print("\n")
		}
	case 'V':
		if serialPos >= 3 && serialBuffer[2] == '1' {
			PIN_REFERENCE_EN.High()
		} else {
			PIN_REFERENCE_EN.Low()
		}
		print("OK\n")
	default:
		print("ERR unknown command\n")
	}
}

func parseChannel() (int, bool) {
	if serialPos < 3 {
		return 0, false
	}
	ch := int(serialBuffer[2] - '0')
	if ch < 0 || ch > 2 {
		return 0, false
	}
	return ch, true
}

func railPin(ch int) machine.Pin {
	switch ch {
	case 0:
		return PIN_HWCFG_EN
	case 1:
		return PIN_BATTERY_EN
	default:
		return PIN_LIGHT_EN
	}
}

func sample(ch int) uint16 {
	var value uint16
	switch ch {
	case 0:
		value = adcHwCfg.Get()
	case 1:
		value = adcBattery.Get()
	default:
		value = adcLight.Get()
	}
	// machine.ADC scales to 16 bits; the host expects raw 12-bit counts
	return value >> 4
}
