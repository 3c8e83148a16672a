package pipeline

import (
	"github.com/sells-group/leadgen-cli/internal/events"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// Deduplicator merges candidate sequences from multiple keyword queries into
// a single first-seen-ordered set keyed by stable identifier.
type Deduplicator struct {
	observer events.Observer
}

// NewDeduplicator creates a Deduplicator emitting to the given observer.
func NewDeduplicator(observer events.Observer) *Deduplicator {
	if observer == nil {
		observer = events.NopObserver{}
	}
	return &Deduplicator{observer: observer}
}

// Merge combines the sequences in the order supplied. A candidate with a
// stable identifier is kept only on first occurrence. A candidate without one
// cannot be deduplicated and is always passed through, flagged so the
// operator knows its identity was never verified.
func (d *Deduplicator) Merge(sequences ...[]model.RawCandidate) []model.RawCandidate {
	seen := make(map[string]struct{})
	var out []model.RawCandidate

	for _, seq := range sequences {
		for _, c := range seq {
			if !c.HasIdentity() {
				d.observer.OnDiagnostic(events.Diagnostic{
					Kind:      events.KindIdentityUnverified,
					Candidate: c.Name,
					Reason:    "no stable identifier, may duplicate another record",
				})
				out = append(out, c)
				continue
			}
			if _, dup := seen[c.PlaceID]; dup {
				d.observer.OnDiagnostic(events.Diagnostic{
					Kind:      events.KindDuplicateDiscarded,
					Candidate: c.Name,
					Reason:    "place_id " + c.PlaceID + " already seen",
				})
				continue
			}
			seen[c.PlaceID] = struct{}{}
			out = append(out, c)
		}
	}

	return out
}
