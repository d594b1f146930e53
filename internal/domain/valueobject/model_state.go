package valueobject

// ModelState is the lifecycle state of the model held by the inference service.
// UNINITIALIZED moves to LOADING at startup, then to READY or FAILED. There is
// no transition out of READY or FAILED.
type ModelState struct {
	value string
}

var (
	ModelStateUninitialized = ModelState{value: "UNINITIALIZED"}
	ModelStateLoading       = ModelState{value: "LOADING"}
	ModelStateReady         = ModelState{value: "READY"}
	ModelStateFailed        = ModelState{value: "FAILED"}
)

// String returns the string representation.
func (s ModelState) String() string {
	if s.value == "" {
		return ModelStateUninitialized.value
	}
	return s.value
}

// IsReady reports whether predictions can be served.
func (s ModelState) IsReady() bool {
	return s == ModelStateReady
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s ModelState) CanTransitionTo(next ModelState) bool {
	switch s {
	case ModelStateUninitialized, ModelState{}:
		return next == ModelStateLoading
	case ModelStateLoading:
		return next == ModelStateReady || next == ModelStateFailed
	default:
		return false
	}
}
