package core

// DebugWriter is a function type for writing one line of diagnostic text.
type DebugWriter func(string)

// Diagnostic event kinds recorded in the post-mortem ring.
const (
	EvtHomingSearch  = 1 // homing search phase entered
	EvtHomingBackoff = 2 // back-off phase entered
	EvtHomingDone    = 3 // zero reference established
	EvtModeToggle    = 4 // mode toggled (value = new mode)
	EvtInterlockTrip = 5 // hard stop contact confirmed (value = estimate)
	EvtPowerDown     = 6 // driver idled by inactivity
	EvtPowerUp       = 7 // driver re-enabled by interaction
)

// DiagEvent captures a control-loop event for post-mortem analysis.
type DiagEvent struct {
	Kind  uint8  // event kind code
	Tick  uint32 // controller time at event, ms since boot
	Value int32  // kind-dependent value
}

const eventRingSize = 32 // keep the last 32 events

var (
	// debugPrintln is the global debug print function, installed by
	// target code. No-op by default so the core never blocks on a
	// missing console.
	debugPrintln DebugWriter = func(string) {}

	eventRing     [eventRingSize]DiagEvent
	eventRingHead uint8
)

// SetDebugWriter sets the target-specific debug output function, allowing
// targets to redirect diagnostics to USB CDC, a UART, or a test buffer.
func SetDebugWriter(w DebugWriter) {
	debugPrintln = w
}

// DebugPrintln writes one diagnostic line using the installed writer.
// The output is observational only; nothing in the control loop consumes
// it.
func DebugPrintln(msg string) {
	debugPrintln(msg)
}

// RecordEvent captures a control-loop event in the ring buffer.
// Non-blocking and allocation-free; safe to call from the loop.
func RecordEvent(kind uint8, tick uint32, value int32) {
	idx := eventRingHead
	eventRing[idx] = DiagEvent{Kind: kind, Tick: tick, Value: value}
	eventRingHead = (idx + 1) % eventRingSize
}

// DumpEventRing writes the ring buffer, oldest first, to the debug
// channel.
func DumpEventRing() {
	debugPrintln("[events] --- ring dump ---")
	start := eventRingHead
	for i := uint8(0); i < eventRingSize; i++ {
		evt := &eventRing[(start+i)%eventRingSize]
		if evt.Kind == 0 {
			continue // empty slot
		}
		debugPrintln("[events] " + eventName(evt.Kind) +
			" t=" + utoa(evt.Tick) +
			" v=" + itoa(int(evt.Value)))
	}
	debugPrintln("[events] --- end dump ---")
}

// ClearEventRing clears the ring buffer.
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = DiagEvent{}
	}
	eventRingHead = 0
}

func eventName(kind uint8) string {
	switch kind {
	case EvtHomingSearch:
		return "HOMING_SEARCH"
	case EvtHomingBackoff:
		return "HOMING_BACKOFF"
	case EvtHomingDone:
		return "HOMING_DONE"
	case EvtModeToggle:
		return "MODE_TOGGLE"
	case EvtInterlockTrip:
		return "INTERLOCK_TRIP"
	case EvtPowerDown:
		return "POWER_DOWN"
	case EvtPowerUp:
		return "POWER_UP"
	default:
		return "UNKNOWN"
	}
}
