package core

// ADCChannelID identifies a logical ADC channel on the target board.
type ADCChannelID uint8

// ADCValue is a raw axis reading in the joystick's native 10-bit range
// (0..1023), regardless of the underlying converter's resolution. Targets
// with wider converters scale down before returning.
type ADCValue uint16

// ADCDriver is the abstract ADC interface that core code uses.
type ADCDriver interface {
	// Init powers up and configures the ADC peripheral.
	Init() error

	// ConfigureChannel prepares a channel for analog input. For
	// pin-muxed channels this sets the pin to analog mode.
	ConfigureChannel(ch ADCChannelID) error

	// ReadRaw performs a one-shot sample from the given channel.
	ReadRaw(ch ADCChannelID) (ADCValue, error)
}

// Global singleton used by core code.
var adcDriver ADCDriver

// SetADCDriver is called by target-specific code to register its driver.
func SetADCDriver(d ADCDriver) {
	adcDriver = d
}

// MustADC returns the configured driver or panics if missing.
func MustADC() ADCDriver {
	if adcDriver == nil {
		panic("ADC driver not configured")
	}
	return adcDriver
}
