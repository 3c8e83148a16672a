package search

import "github.com/sells-group/leadgen-cli/pkg/places"

// Phase is the retrieval loop's state. Transitions are driven by Advance so
// every termination condition is testable without a live client.
type Phase int

const (
	// PhaseFetching means the next page request may be issued immediately.
	PhaseFetching Phase = iota
	// PhaseAwaitingToken means a continuation token is held but must settle
	// before it becomes valid upstream.
	PhaseAwaitingToken
	// PhaseDone means retrieval finished normally.
	PhaseDone
	// PhaseFailed means retrieval stopped on an error status.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseFetching:
		return "fetching"
	case PhaseAwaitingToken:
		return "awaitingToken"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PaginationState tracks one query's retrieval loop. It lives only for the
// duration of a single Search call.
type PaginationState struct {
	Token        string
	PagesFetched int
	PageLimit    int
	Phase        Phase
}

// NewPaginationState returns a fresh state ready to fetch the first page.
func NewPaginationState(pageLimit int) PaginationState {
	return PaginationState{PageLimit: pageLimit, Phase: PhaseFetching}
}

// Advance applies the outcome of the page just fetched. OK with a token moves
// to awaitingToken unless the page cap is reached, in which case the token is
// discarded and retrieval ends. ZERO_RESULTS ends retrieval with whatever was
// accumulated. Any other status fails the query.
func (p *PaginationState) Advance(status places.Status, nextToken string) {
	switch status {
	case places.StatusOK:
		if nextToken == "" {
			p.Token = ""
			p.Phase = PhaseDone
			return
		}
		if p.PagesFetched >= p.PageLimit {
			// Page cap reached with more results available upstream: drop
			// the token, no further retrieval is attempted.
			p.Token = ""
			p.Phase = PhaseDone
			return
		}
		p.Token = nextToken
		p.Phase = PhaseAwaitingToken
	case places.StatusZeroResults:
		p.Token = ""
		p.Phase = PhaseDone
	default:
		p.Phase = PhaseFailed
	}
}
