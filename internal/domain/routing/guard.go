package routing

// GuardState is the per-navigation state of the page guard
type GuardState string

// Guard states
const (
	StateIdle        GuardState = "IDLE"
	StateChecking    GuardState = "CHECKING"
	StateAllowed     GuardState = "ALLOWED"
	StateRedirecting GuardState = "REDIRECTING"
)

// Session is the explicit authentication input of a navigation.
// A nil Session is unauthenticated.
type Session interface {
	Authenticated() bool
}

// Decision is the outcome of one navigation
type Decision struct {
	Path       string
	State      GuardState
	Public     bool
	RedirectTo string
}

// Allowed reports whether the navigation may proceed
func (d Decision) Allowed() bool {
	return d.State == StateAllowed
}

// Guard evaluates page navigations. It holds no session state of its own:
// every call starts in IDLE and ends in ALLOWED or REDIRECTING.
type Guard struct {
	observer func(from, to GuardState)
}

// GuardOption configures a Guard
type GuardOption func(*Guard)

// WithTransitionObserver registers a callback for every state change
func WithTransitionObserver(fn func(from, to GuardState)) GuardOption {
	return func(g *Guard) {
		g.observer = fn
	}
}

// NewGuard creates a new Guard
func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Navigate runs the state machine for a single navigation to path?search.
func (g *Guard) Navigate(p, search string, session Session) Decision {
	state := StateIdle
	state = g.transition(state, StateChecking)

	normalized := NormalizePath(p)
	decision := Decision{Path: normalized, Public: IsRoutePublic(normalized)}

	switch {
	case decision.Public:
		decision.State = g.transition(state, StateAllowed)
	case session != nil && session.Authenticated():
		decision.State = g.transition(state, StateAllowed)
	default:
		decision.State = g.transition(state, StateRedirecting)
		decision.RedirectTo = LoginRedirectURL(normalized, search)
	}
	return decision
}

func (g *Guard) transition(from, to GuardState) GuardState {
	if g.observer != nil {
		g.observer(from, to)
	}
	return to
}
