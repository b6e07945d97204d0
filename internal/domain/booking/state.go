package booking

import (
	"github.com/shareloop/service-share/internal/domain"
)

// State is a query-time classification of bookings relative to the current
// instant. It is computed from {status, start, end} when a listing runs and
// is never persisted.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

var knownStates = map[State]struct{}{
	StateAll:      {},
	StateCurrent:  {},
	StatePast:     {},
	StateFuture:   {},
	StateWaiting:  {},
	StateRejected: {},
}

// ParseState converts a wire token into a State. Tokens are case-sensitive
// uppercase; anything else is rejected here so unknown variants never reach
// the query layer.
func ParseState(token string) (State, error) {
	state := State(token)
	if _, ok := knownStates[state]; !ok {
		return "", domain.NewValidationError("Unknown state: " + token)
	}
	return state, nil
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
