package domain

// SessionState represents the lifecycle state of a browser session.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
)

// validSessionTransitions defines the allowed state machine transitions.
// Authenticated -> Authenticated is a refresh that replaces the identity.
var validSessionTransitions = map[SessionState][]SessionState{
	StateAnonymous:      {StateAuthenticating},
	StateAuthenticating: {StateAuthenticated, StateAnonymous},
	StateAuthenticated:  {StateAnonymous, StateAuthenticating, StateAuthenticated},
}

// CanTransitionTo reports whether a transition from current state to next is valid.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range validSessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SessionSnapshot is the read-only view of a session handed to pages.
type SessionSnapshot struct {
	State    SessionState
	Identity *Identity
}

// Authenticated reports whether the snapshot carries a usable identity.
func (s SessionSnapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Identity != nil
}
