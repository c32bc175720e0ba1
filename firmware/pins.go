//go:build tinygo

package main

import "machine"

const (
	// ADC configuration
	ADC_REFERENCE_MV = 2500 // Reference voltage in millivolts (2.5V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// A single conversion takes well under this; the host polls B
	// until it reads 0.
	CONVERSION_TIME_US = 630

	// Sensor rail switches
	PIN_HWCFG_EN     = machine.D7
	PIN_BATTERY_EN   = machine.D8
	PIN_LIGHT_EN     = machine.D9
	PIN_REFERENCE_EN = machine.D10

	// ADC pins
	PIN_HWCFG_ADC   = machine.A0
	PIN_BATTERY_ADC = machine.A1
	PIN_LIGHT_ADC   = machine.A2

	// Serial configuration
	// Commands and responses are short lines ("S 1\n", "OK\n",
	// "4095\n"); 115200 baud leaves plenty of headroom for the
	// poll-heavy busy loop.
	UART_BAUD_RATE = 115200
)
