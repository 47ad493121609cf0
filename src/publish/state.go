package publish

import "github.com/warp-contracts/publisher/src/utils/model"

// State of a single publication
type State string

const (
	StateIdle       State = State(model.PublicationStateIdle)
	StateValidating State = State(model.PublicationStateValidating)
	StateUploading  State = State(model.PublicationStateUploading)
	StateMinting    State = State(model.PublicationStateMinting)
	StateApproving  State = State(model.PublicationStateApproving)
	StateListing    State = State(model.PublicationStateListing)
	StateDone       State = State(model.PublicationStateDone)
	StateFailed     State = State(model.PublicationStateFailed)
)

func (self State) IsTerminal() bool {
	return self == StateDone || self == StateFailed
}

// Step that failed
type Stage string

const (
	StageValidate Stage = "validate"
	StageSession  Stage = "session"
	StageUpload   Stage = "upload"
	StageMint     Stage = "mint"
	StageApprove  Stage = "approve"
	StageList     Stage = "list"
)

// Stage performed in the given state
func (self State) Stage() Stage {
	switch self {
	case StateValidating:
		return StageValidate
	case StateUploading:
		return StageUpload
	case StateMinting:
		return StageMint
	case StateApproving:
		return StageApprove
	case StateListing:
		return StageList
	default:
		return ""
	}
}

// Allowed transitions. Failure is reachable from every non terminal state.
var transitions = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateUploading, StateMinting, StateApproving, StateListing},
	StateUploading:  {StateMinting},
	StateMinting:    {StateApproving},
	StateApproving:  {StateListing},
	StateListing:    {StateDone},
}

func (self State) CanTransitionTo(next State) bool {
	if self.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	for _, allowed := range transitions[self] {
		if allowed == next {
			return true
		}
	}
	return false
}
