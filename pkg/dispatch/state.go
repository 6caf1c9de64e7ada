package dispatch

// State is a step of one dispatch.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StatePrivateConfirm
	StateAttributeConfirm
	StateParameterCollection
	StateValidating
	StateSummaryConfirm
	StateDispatching
	StateCompleted
	StateFailed
	StateCancelled
)

var stateNames = [...]string{
	StateIdle:                "idle",
	StateSelecting:           "selecting",
	StatePrivateConfirm:      "private-confirm",
	StateAttributeConfirm:    "attribute-confirm",
	StateParameterCollection: "parameter-collection",
	StateValidating:          "validating",
	StateSummaryConfirm:      "summary-confirm",
	StateDispatching:         "dispatching",
	StateCompleted:           "completed",
	StateFailed:              "failed",
	StateCancelled:           "cancelled",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// PreDispatch reports whether the state may still end in cancellation.
func (s State) PreDispatch() bool {
	return s >= StateSelecting && s <= StateSummaryConfirm
}

// Mode selects the dispatch path.
type Mode string

const (
	ModeAttached Mode = "attached"
	ModeDetached Mode = "detached"
)

// Status classifies an Outcome.
type Status int

const (
	StatusSuccess Status = iota
	StatusRuntimeFailure
	StatusSpawnError
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRuntimeFailure:
		return "runtime-failure"
	case StatusSpawnError:
		return "spawn-error"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}
