package lifecycle

import "errors"

// Precondition errors. Returned synchronously and surfaced verbatim to the
// caller; never retried automatically.
var (
	ErrAlreadyMember       = errors.New("already a member of this lobby")
	ErrBanned              = errors.New("banned from this lobby")
	ErrAlreadyInOtherLobby = errors.New("already in another active lobby")
	ErrLobbyFull           = errors.New("lobby is full")
	ErrLobbyClosed         = errors.New("lobby is closed")
	ErrLobbyNotFound       = errors.New("lobby not found")
	ErrMembershipNotFound  = errors.New("member not found in this lobby")
	ErrNotAuthorized       = errors.New("not authorized")
)
