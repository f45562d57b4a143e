package identity

import "farmconnect/models"

type EventKind int

const (
	EventAuthenticated EventKind = iota + 1
	EventAnonymous
	// EventProfileIncomplete follows a signup whose profile record could not
	// be stored. User carries the new account id and role.
	EventProfileIncomplete
)

func (k EventKind) String() string {
	switch k {
	case EventAuthenticated:
		return "authenticated"
	case EventAnonymous:
		return "anonymous"
	case EventProfileIncomplete:
		return "profile_incomplete"
	}
	return "unknown"
}

type Event struct {
	Kind EventKind
	User *models.User
}

type Observer interface {
	OnIdentityEvent(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) OnIdentityEvent(e Event) { f(e) }
