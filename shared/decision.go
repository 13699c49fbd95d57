package shared

// Decision represents a trend signal decision.
type Decision int

const (
	Hold Decision = iota
	EnterLong
	ExitLong
)

// String stringifies the provided decision.
func (d Decision) String() string {
	switch d {
	case Hold:
		return "hold"
	case EnterLong:
		return "enter long"
	case ExitLong:
		return "exit long"
	default:
		return "unknown"
	}
}
