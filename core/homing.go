package core

// HomingPhase identifies the stage of the boot homing sequence.
type HomingPhase uint8

const (
	// PhaseSearch drives Down at the search velocity until the limit
	// switch reads triggered for a full debounce window.
	PhaseSearch HomingPhase = iota
	// PhaseBackOff drives Up at the back-off velocity until the switch
	// reads released for a full debounce window.
	PhaseBackOff
	// PhaseDone means the zero reference is established.
	PhaseDone
)

// Homing is the one-shot boot sequence that establishes the stage's zero
// reference. It is driven by the same periodic tick as the steady-state
// loop, so tests advance simulated time instead of sleeping.
//
// There is deliberately no timeout: if the switch never resolves (wiring
// fault, stuck switch) the sequencer never completes and the only external
// symptom is the missing ready message. Recovery requires a power cycle
// and hardware inspection.
type Homing struct {
	cfg      Config
	phase    HomingPhase
	debounce Debounce
	started  bool
}

// NewHoming returns a sequencer ready to run from the search phase.
func NewHoming(cfg Config) *Homing {
	return &Homing{cfg: cfg}
}

// Phase returns the current phase.
func (h *Homing) Phase() HomingPhase {
	return h.phase
}

// Tick advances the sequencer by one cycle and returns the motion to
// command for this cycle. done becomes true on the cycle the zero
// reference is established; on that cycle the MotionState has been reset
// (estimate zeroed, latch cleared) and the returned request is a stop.
func (h *Homing) Tick(st *MotionState, limitTriggered bool, now, dt uint32) (req Request, done bool) {
	if !h.started {
		h.started = true
		if limitTriggered {
			// Already resting on the switch: skip the search.
			h.phase = PhaseBackOff
			RecordEvent(EvtHomingBackoff, now, 0)
			DebugPrintln("homing: switch already closed, backing off")
		} else {
			RecordEvent(EvtHomingSearch, now, 0)
			DebugPrintln("homing: searching for home switch")
		}
	}

	switch h.phase {
	case PhaseSearch:
		if h.debounce.Advance(limitTriggered, dt, h.cfg.DebounceMs) {
			h.phase = PhaseBackOff
			h.debounce.Reset()
			RecordEvent(EvtHomingBackoff, now, 0)
			DebugPrintln("homing: home switch made, backing off")
			return Request{Velocity: h.cfg.BackoffStepRate, Direction: Up}, false
		}
		return Request{Velocity: h.cfg.SearchStepRate, Direction: Down}, false

	case PhaseBackOff:
		if h.debounce.Advance(!limitTriggered, dt, h.cfg.DebounceMs) {
			h.phase = PhaseDone
			h.debounce.Reset()
			st.StepEstimate = 0
			st.HomedZero = false
			RecordEvent(EvtHomingDone, now, 0)
			DebugPrintln("stage: ready")
			return Request{Velocity: 0, Direction: Up}, true
		}
		return Request{Velocity: h.cfg.BackoffStepRate, Direction: Up}, false

	default:
		return Request{Velocity: 0, Direction: Up}, true
	}
}
