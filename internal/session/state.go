package session

// State identifies where a Session is in its lifecycle. Any failure after
// StateLockPending routes through StateTearingDown rather than straight to
// StateDone.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateLockPending
	StateTransferring
	StateRemoteDecompressing
	StateExecuting
	StateTearingDown
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateLockPending:
		return "lock-pending"
	case StateTransferring:
		return "transferring"
	case StateRemoteDecompressing:
		return "remote-decompressing"
	case StateExecuting:
		return "executing"
	case StateTearingDown:
		return "tearing-down"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
