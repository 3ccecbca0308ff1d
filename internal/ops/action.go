package ops

import (
	"errors"
	"fmt"
)

// ErrInvalidAction reports an unknown action kind. This is a caller
// contract violation, not a runtime condition.
var ErrInvalidAction = errors.New("invalid container action")

// ErrProtected reports an attempt to remove a protected container.
var ErrProtected = errors.New("container is protected")

// Action is a container lifecycle action.
type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
)

// ParseAction validates an action name from an untrusted source.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionStart, ActionStop, ActionRestart:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}
