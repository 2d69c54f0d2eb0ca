package core

// Request is the velocity/direction pair the mapper produces for one
// cycle, before the safety interlock has had its say.
type Request struct {
	Velocity  uint32 // steps/s; zero means hold
	Direction Direction
}

// MapVelocity turns a classified input sample into the requested motion
// for this cycle. It owns the homed-zero latch rules: Up or Neutral intent
// releases the latch, and while the latch is set no Down velocity is
// produced for any axis value. Beyond the upward soft limit velocity is
// forced to zero but the direction intent is preserved; there is no
// automatic reversal.
func MapVelocity(cfg Config, st *MotionState, sample JoystickSample, intent Intent) Request {
	if st.HomedZero && intent != IntentDown {
		st.HomedZero = false
	}

	if st.Mode == FixedSpeed {
		if st.HomedZero {
			return Request{Velocity: 0, Direction: Down}
		}
		return Request{Velocity: cfg.CreepStepRate, Direction: Down}
	}

	switch intent {
	case IntentUp:
		if st.StepEstimate >= cfg.SoftLimitSteps {
			// Soft limit reached: hold, keep the intent.
			return Request{Velocity: 0, Direction: Up}
		}
		deflect := uint32(sample.AxisRaw - cfg.AxisUpperThreshold)
		span := uint32(cfg.AxisMax - cfg.AxisUpperThreshold)
		return Request{Velocity: interpolate(cfg, deflect, span), Direction: Up}
	case IntentDown:
		if st.HomedZero {
			return Request{Velocity: 0, Direction: Down}
		}
		deflect := uint32(cfg.AxisLowerThreshold - sample.AxisRaw)
		span := uint32(cfg.AxisLowerThreshold)
		return Request{Velocity: interpolate(cfg, deflect, span), Direction: Down}
	default:
		return Request{Velocity: 0, Direction: st.Direction}
	}
}

// interpolate maps a deflection beyond the dead-zone edge linearly onto
// [MinStepRate, MaxStepRate]. deflect is at least 1 when called (the edge
// itself classifies as neutral and yields zero).
func interpolate(cfg Config, deflect, span uint32) uint32 {
	if span == 0 {
		return cfg.MaxStepRate
	}
	if deflect > span {
		deflect = span
	}
	return cfg.MinStepRate + (cfg.MaxStepRate-cfg.MinStepRate)*deflect/span
}
