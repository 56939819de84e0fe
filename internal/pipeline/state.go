package pipeline

import "fmt"

// State 流水线状态
type State int

const (
	StateFetching State = iota
	StateAnalyzing
	StateValidating
	StateCombining
	StateReporting
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateFetching:   "fetching",
	StateAnalyzing:  "analyzing",
	StateValidating: "validating",
	StateCombining:  "combining",
	StateReporting:  "reporting",
	StateDone:       "done",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal 是否为终止状态
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// StageError 某个阶段失败
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline failed during %s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
