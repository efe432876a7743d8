package loginflow

import (
	"errors"
	"fmt"
)

// ErrInvalidPasscode is returned when the challenge passcode is wrong or
// malformed
var ErrInvalidPasscode = errors.New("invalid otp")

// ErrNoChallengePending is returned when a challenge step arrives without a
// valid pending device cookie
var ErrNoChallengePending = errors.New("no device challenge pending")

// ErrInvalidTransition is returned when an event is not allowed in the
// current state
type ErrInvalidTransition struct {
	From  State
	Event Event
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("event %s not allowed in state %s", e.Event, e.From)
}
