// Package events defines the diagnostic observer interface the pipeline emits
// to. Progress and rejection reasons flow through an Observer rather than a
// logger so the core stages stay decoupled from any particular logging
// mechanism.
package events

import (
	"sync"

	"go.uber.org/zap"
)

// Kind identifies a class of pipeline diagnostic.
type Kind string

const (
	// KindPageFetched reports one search page retrieved.
	KindPageFetched Kind = "page_fetched"
	// KindRecordDropped reports a raw result missing required fields.
	KindRecordDropped Kind = "record_dropped"
	// KindQueryFailed reports a query-scoped retrieval failure.
	KindQueryFailed Kind = "query_failed"
	// KindDuplicateDiscarded reports a candidate whose stable identifier was
	// already seen.
	KindDuplicateDiscarded Kind = "duplicate_discarded"
	// KindIdentityUnverified reports a candidate passed through dedup without
	// a stable identifier.
	KindIdentityUnverified Kind = "identity_unverified"
	// KindGeocodeFailed reports a candidate address that could not be
	// resolved to a coordinate.
	KindGeocodeFailed Kind = "geocode_failed"
	// KindOutsideRadius reports a candidate beyond the distance threshold.
	KindOutsideRadius Kind = "outside_radius"
	// KindBelowMinRatings reports a candidate under the rating-count threshold.
	KindBelowMinRatings Kind = "below_min_ratings"
	// KindMalformedRating reports a rating count that is neither numeric nor
	// the absent-value sentinel.
	KindMalformedRating Kind = "malformed_rating"
	// KindLeadAccepted reports a candidate that passed the filter.
	KindLeadAccepted Kind = "lead_accepted"
)

// Diagnostic is one pipeline event with enough context to debug a rejection
// without halting the run.
type Diagnostic struct {
	Kind      Kind
	Candidate string // candidate name or keyword, depending on the stage
	Reason    string
	Err       error
}

// Observer receives diagnostics as the pipeline runs.
type Observer interface {
	OnDiagnostic(d Diagnostic)
}

// ZapObserver logs diagnostics through a zap logger. Progress kinds log at
// info, rejections and failures at warn.
type ZapObserver struct {
	log *zap.Logger
}

// NewZapObserver creates a ZapObserver. A nil logger falls back to the global.
func NewZapObserver(log *zap.Logger) *ZapObserver {
	if log == nil {
		log = zap.L()
	}
	return &ZapObserver{log: log}
}

func (o *ZapObserver) OnDiagnostic(d Diagnostic) {
	fields := []zap.Field{
		zap.String("kind", string(d.Kind)),
		zap.String("candidate", d.Candidate),
	}
	if d.Reason != "" {
		fields = append(fields, zap.String("reason", d.Reason))
	}
	if d.Err != nil {
		fields = append(fields, zap.Error(d.Err))
	}

	switch d.Kind {
	case KindPageFetched, KindLeadAccepted:
		o.log.Info("pipeline event", fields...)
	default:
		o.log.Warn("pipeline event", fields...)
	}
}

// NopObserver discards all diagnostics.
type NopObserver struct{}

func (NopObserver) OnDiagnostic(Diagnostic) {}

// Recorder captures diagnostics for assertions in tests.
type Recorder struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (r *Recorder) OnDiagnostic(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

// All returns every recorded diagnostic in emission order.
func (r *Recorder) All() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}

// ByKind returns recorded diagnostics of the given kind.
func (r *Recorder) ByKind(kind Kind) []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Diagnostic
	for _, d := range r.diags {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
