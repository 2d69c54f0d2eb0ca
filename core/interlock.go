package core

// Interlock watches the limit switch during downward motion and, once the
// switch has read triggered for a full debounce window while Down motion
// is being commanded, forces a stop and latches the homed-zero reference.
//
// This is the sole mechanism that keeps the stage off its lower hard stop,
// so the controller runs it every cycle, unconditionally, between velocity
// mapping and the driver commit.
type Interlock struct {
	cfg      Config
	debounce Debounce
}

// NewInterlock returns an Interlock with an idle debounce timer.
func NewInterlock(cfg Config) *Interlock {
	return &Interlock{cfg: cfg}
}

// Apply inspects the requested motion against the limit switch and returns
// the possibly clamped request. The debounce condition is the simultaneous
// conjunction of switch triggered, Down direction and non-zero velocity;
// any cycle where one of the three does not hold resets the timer, which
// rejects both switch bounce and momentary drift near the switch.
//
// On a confirmed trip the MotionState is mutated directly: FixedSpeed mode
// is cancelled back to Manual and the homed-zero latch is set.
func (il *Interlock) Apply(st *MotionState, req Request, limitTriggered bool, now, dt uint32) Request {
	held := limitTriggered && req.Direction == Down && req.Velocity > 0
	if !il.debounce.Advance(held, dt, il.cfg.DebounceMs) {
		return req
	}
	il.debounce.Reset()

	req.Velocity = 0
	if st.Mode == FixedSpeed {
		st.Mode = Manual
	}
	st.HomedZero = true
	RecordEvent(EvtInterlockTrip, now, st.StepEstimate)
	DebugPrintln("interlock: hard stop contact, motion halted")
	return req
}
