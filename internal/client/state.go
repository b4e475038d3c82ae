package client

// State is the connection lifecycle state. Exactly one value holds at any
// instant; transitions follow the ladder
// Disconnected -> Connecting -> Authenticating -> Connected, with
// Connected -> Reconnecting -> Connecting on failure and any -> Closed on
// explicit stop.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateConnected
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
