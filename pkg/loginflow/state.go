package loginflow

import "fmt"

// State is where a browser stands in the login flow
type State int

const (
	// StateAnonymous is the starting state: no valid cookie at all
	StateAnonymous State = iota

	// StateCredentialsChecked means username/password were just verified.
	// It is transient; a request leaves it before responding.
	StateCredentialsChecked

	// StateDeviceChallengePending means the credential check passed on an
	// unrecognized device and a passcode challenge is outstanding
	StateDeviceChallengePending

	// StateAuthenticated means the user is logged in on a trusted device
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateCredentialsChecked:
		return "credentials_checked"
	case StateDeviceChallengePending:
		return "device_challenge_pending"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Event is something that happens to a login flow
type Event int

const (
	// EventCredentialsValid fires when a username/password pair checks out
	EventCredentialsValid Event = iota

	// EventDeviceRecognized fires when the fingerprint matches a device
	// the user already trusts
	EventDeviceRecognized

	// EventDeviceUnknown fires when the fingerprint does not match any
	// trusted device
	EventDeviceUnknown

	// EventPasscodeAccepted fires when the challenge passcode is correct
	EventPasscodeAccepted

	// EventChallengeCancelled fires when the user abandons the challenge
	EventChallengeCancelled

	// EventLoggedOut fires when the user logs out or the session is no
	// longer valid
	EventLoggedOut
)

func (e Event) String() string {
	switch e {
	case EventCredentialsValid:
		return "credentials_valid"
	case EventDeviceRecognized:
		return "device_recognized"
	case EventDeviceUnknown:
		return "device_unknown"
	case EventPasscodeAccepted:
		return "passcode_accepted"
	case EventChallengeCancelled:
		return "challenge_cancelled"
	case EventLoggedOut:
		return "logged_out"
	default:
		return fmt.Sprintf("unknown(%d)", int(e))
	}
}

// transitions is the complete state machine. Anything not listed here is an
// invalid transition.
var transitions = map[State]map[Event]State{
	StateAnonymous: {
		EventCredentialsValid: StateCredentialsChecked,
	},
	StateCredentialsChecked: {
		EventDeviceRecognized: StateAuthenticated,
		EventDeviceUnknown:    StateDeviceChallengePending,
	},
	StateDeviceChallengePending: {
		EventPasscodeAccepted:   StateAuthenticated,
		EventChallengeCancelled: StateAnonymous,
		// The device can become trusted mid-challenge, e.g. the same
		// challenge completed in another tab
		EventDeviceRecognized: StateAuthenticated,
		// Re-submitting credentials restarts the flow
		EventCredentialsValid: StateCredentialsChecked,
	},
	StateAuthenticated: {
		EventLoggedOut: StateAnonymous,
		// Logging in again while already authenticated restarts the flow
		EventCredentialsValid: StateCredentialsChecked,
	},
}

// Transition applies event to state and returns the next state. It is the
// single place flow steps are allowed to happen.
func Transition(state State, event Event) (State, error) {
	next, ok := transitions[state][event]
	if !ok {
		return state, ErrInvalidTransition{From: state, Event: event}
	}
	return next, nil
}
