package crawler

// State is a step of the crawl state machine.
type State int

const (
	StateInit State = iota
	StateSearchLoaded
	StateCookieResolved
	StatePaginated
	StateSearchCaptured
	StateVisitingProducts
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateSearchLoaded:
		return "search_loaded"
	case StateCookieResolved:
		return "cookie_resolved"
	case StatePaginated:
		return "paginated"
	case StateSearchCaptured:
		return "search_captured"
	case StateVisitingProducts:
		return "visiting_products"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
