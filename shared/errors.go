package shared

import "errors"

var (
	// ErrInsufficientHistory is returned when a price series is shorter than the signal window.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrNoOracleData is returned when no usable oracle price is available for a market.
	ErrNoOracleData = errors.New("no oracle data")
	// ErrSubmit is returned when an order submission is rejected or fails in transit.
	ErrSubmit = errors.New("order submission failed")
	// ErrUnknownMarketAccount is returned when the venue has no account for a configured market.
	ErrUnknownMarketAccount = errors.New("unknown market account")
	// ErrProvider is returned when the price history provider cannot be reached or errors.
	ErrProvider = errors.New("price history provider error")
	// ErrPositionUnavailable is returned when the venue position for a market cannot be read.
	ErrPositionUnavailable = errors.New("position unavailable")
)

// ErrorKind represents the failure kind of a pass step.
type ErrorKind int

const (
	NoError ErrorKind = iota
	InsufficientHistory
	NoOracleData
	SubmitError
	UnknownMarketAccount
	ProviderError
	PositionUnavailable
	UnknownError
)

// String stringifies the provided error kind.
func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return "none"
	case InsufficientHistory:
		return "insufficient history"
	case NoOracleData:
		return "no oracle data"
	case SubmitError:
		return "submit error"
	case UnknownMarketAccount:
		return "unknown market account"
	case ProviderError:
		return "provider error"
	case PositionUnavailable:
		return "position unavailable"
	default:
		return "unknown"
	}
}

// IsPassFatal checks whether the error kind aborts the whole pass.
func (k ErrorKind) IsPassFatal() bool {
	return k == UnknownMarketAccount || k == PositionUnavailable
}

// KindOf classifies the provided error.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return NoError
	case errors.Is(err, ErrInsufficientHistory):
		return InsufficientHistory
	case errors.Is(err, ErrNoOracleData):
		return NoOracleData
	case errors.Is(err, ErrSubmit):
		return SubmitError
	case errors.Is(err, ErrUnknownMarketAccount):
		return UnknownMarketAccount
	case errors.Is(err, ErrProvider):
		return ProviderError
	case errors.Is(err, ErrPositionUnavailable):
		return PositionUnavailable
	default:
		return UnknownError
	}
}
