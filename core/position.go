package core

// Estimate advances the open-loop position estimate by one cycle of the
// committed motion. The driver free-runs in velocity mode with no
// step-pulse feedback, so this is an approximation derived from the
// commanded rate and the fixed loop period: it is only as accurate as the
// motor is stall-free, and it drifts if steps are ever skipped.
//
// The estimate changes only while the committed velocity is non-zero; a
// stopped or power-idled stage holds its value.
func Estimate(cfg Config, st *MotionState) {
	if st.Velocity == 0 {
		return
	}
	delta := int32(st.Velocity) / cfg.EstimateDivisor
	if st.Direction == Down {
		delta = -delta
	}
	st.StepEstimate += delta
}
