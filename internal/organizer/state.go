package organizer

// State is a position in the per-request planning lifecycle.
type State uint8

const (
	StateReceived State = iota
	StateClassified
	StatePlanned
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateClassified:
		return "classified"
	case StatePlanned:
		return "planned"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StatePlanned || s == StateFailed
}
