package core

// Sampler reads the joystick each cycle, classifies the axis against the
// dead-zone, tracks operator interaction for the power manager, and runs
// the button press-confirm-hold protocol.
type Sampler struct {
	cfg  Config
	pins Pins

	lastInteraction uint32 // tick of the last qualifying interaction

	button  buttonState
	confirm Debounce
}

type buttonState uint8

const (
	buttonIdle buttonState = iota
	buttonConfirming
	buttonHeld
)

// NewSampler returns a Sampler over the given input pins.
func NewSampler(cfg Config, pins Pins) *Sampler {
	return &Sampler{cfg: cfg, pins: pins}
}

// Sample reads the axis and button once. A hardware read error yields a
// neutral axis reading: the stage must never move on a faulty input.
func (s *Sampler) Sample() JoystickSample {
	v, err := MustADC().ReadRaw(s.pins.Axis)
	if err != nil {
		v = ADCValue(s.cfg.AxisMax / 2)
	}
	if uint16(v) > s.cfg.AxisMax {
		v = ADCValue(s.cfg.AxisMax)
	}
	// Button is active low against a pull-up.
	pressed := !MustGPIO().ReadPin(s.pins.Button)
	return JoystickSample{AxisRaw: uint16(v), ButtonPressed: pressed}
}

// Intent classifies a sample against the asymmetric dead-zone.
func (s *Sampler) Intent(sample JoystickSample) Intent {
	switch {
	case sample.AxisRaw > s.cfg.AxisUpperThreshold:
		return IntentUp
	case sample.AxisRaw < s.cfg.AxisLowerThreshold:
		return IntentDown
	default:
		return IntentNeutral
	}
}

// Observe refreshes the interaction clock from a sample and reports
// whether the sample counts as an interaction (axis outside the dead-zone,
// or button pressed).
func (s *Sampler) Observe(sample JoystickSample, now uint32) bool {
	if s.Intent(sample) != IntentNeutral || sample.ButtonPressed {
		s.lastInteraction = now
		return true
	}
	return false
}

// IdleFor returns how long the operator has been inactive, in ms.
func (s *Sampler) IdleFor(now uint32) uint32 {
	return now - s.lastInteraction
}

// UpdateButton advances the press-confirm-hold state machine by one cycle
// and reports true exactly once per physical press, on the cycle the press
// is confirmed. A press shorter than the confirm delay is treated as a
// transient and discarded; after confirmation further cycles are ignored
// until the button is released, so one press toggles the mode exactly
// once.
func (s *Sampler) UpdateButton(pressed bool, dt uint32) bool {
	switch s.button {
	case buttonIdle:
		if pressed {
			s.button = buttonConfirming
			s.confirm.Reset()
		}
	case buttonConfirming:
		if !pressed {
			// Transient; no toggle.
			s.button = buttonIdle
			break
		}
		if s.confirm.Advance(true, dt, s.cfg.ButtonConfirmMs) {
			s.button = buttonHeld
			return true
		}
	case buttonHeld:
		if !pressed {
			s.button = buttonIdle
		}
	}
	return false
}
