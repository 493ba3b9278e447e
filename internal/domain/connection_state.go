package domain

import "fmt"

type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateRegistered
	StateLive
	StateClosing
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateRegistered:
		return "registered"
	case StateLive:
		return "live"
	case StateClosing:
		return "closing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var allowedTransitions = map[ConnectionState][]ConnectionState{
	StateDisconnected: {StateConnecting},
	StateConnecting:   {StateRegistered, StateClosing, StateDisconnected},
	StateRegistered:   {StateLive, StateClosing},
	StateLive:         {StateClosing},
	StateClosing:      {StateDisconnected},
}

func (s ConnectionState) CanTransitionTo(next ConnectionState) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transition returns next when the move is legal and ErrInvalidTransition
// otherwise, leaving the caller's state untouched.
func (s ConnectionState) Transition(next ConnectionState) (ConnectionState, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}

// CanSend reports whether control messages may be written in this state.
func (s ConnectionState) CanSend() bool {
	return s == StateRegistered || s == StateLive
}
