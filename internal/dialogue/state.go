package dialogue

// State is the closed set of dialogue positions. Every transition is
// dispatched on the current state, so an unknown value cannot drive the
// conversation anywhere.
type State int

const (
	StateIdle State = iota
	StateAwaitingMovieID
	StateAwaitingTicketCount
	StateAwaitingContactInfo
	StateAwaitingDeleteConfirm
	StateAwaitingBookingIDToDelete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAwaitingMovieID:
		return "AWAITING_MOVIE_ID"
	case StateAwaitingTicketCount:
		return "AWAITING_TICKET_COUNT"
	case StateAwaitingContactInfo:
		return "AWAITING_CONTACT_INFO"
	case StateAwaitingDeleteConfirm:
		return "AWAITING_DELETE_CONFIRM"
	case StateAwaitingBookingIDToDelete:
		return "AWAITING_BOOKING_ID_TO_DELETE"
	default:
		return "UNKNOWN"
	}
}
