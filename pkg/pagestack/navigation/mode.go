package navigation

// Mode describes why a page is being navigated to or from.
type Mode int

const (
	ModeNew     Mode = iota // A fresh entry was pushed
	ModeBack                // The cursor moved one entry back
	ModeForward             // The cursor moved one entry forward
	ModeRefresh             // The current entry was redisplayed (session restore or save probe)
)

func (m Mode) String() string {
	switch m {
	case ModeNew:
		return "new"
	case ModeBack:
		return "back"
	case ModeForward:
		return "forward"
	case ModeRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Phase is the coordinator's position in its transition state machine.
type Phase int32

const (
	PhaseIdle          Phase = iota // Ready for a new request
	PhaseNavigatingOut              // Waiting on the outgoing page's guard
	PhaseCommitting                 // Mutating the stack and firing hooks
	PhaseGuarding                   // A back guard chain is walking its guards
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseNavigatingOut:
		return "navigating_out"
	case PhaseCommitting:
		return "committing"
	case PhaseGuarding:
		return "guarding"
	default:
		return "unknown"
	}
}
