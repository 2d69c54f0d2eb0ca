//go:build rp2040

package main

import (
	"errors"
	"machine"

	"stagectl/core"
)

// RPADCDriver implements core.ADCDriver on the RP2040's four external
// inputs: channels 0..3 sit on GP26..GP29. The converter produces 12-bit
// samples; readings are scaled down to the joystick's 10-bit convention.
type RPADCDriver struct {
	channels map[core.ADCChannelID]machine.ADC
}

func NewRPADCDriver() *RPADCDriver {
	return &RPADCDriver{channels: make(map[core.ADCChannelID]machine.ADC)}
}

func (d *RPADCDriver) Init() error {
	machine.InitADC()
	return nil
}

func (d *RPADCDriver) ConfigureChannel(ch core.ADCChannelID) error {
	if _, ok := d.channels[ch]; ok {
		return nil
	}
	var adc machine.ADC
	switch ch {
	case 0:
		adc = machine.ADC{Pin: machine.ADC0}
	case 1:
		adc = machine.ADC{Pin: machine.ADC1}
	case 2:
		adc = machine.ADC{Pin: machine.ADC2}
	case 3:
		adc = machine.ADC{Pin: machine.ADC3}
	default:
		return errors.New("adc: unsupported channel")
	}
	if err := adc.Configure(machine.ADCConfig{}); err != nil {
		return err
	}
	d.channels[ch] = adc
	return nil
}

func (d *RPADCDriver) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	adc, ok := d.channels[ch]
	if !ok {
		if err := d.ConfigureChannel(ch); err != nil {
			return 0, err
		}
		adc = d.channels[ch]
	}
	return core.ADCValue(adc.Get() >> 2), nil
}
