// Package search implements bounded, rate-respecting retrieval of candidate
// listings from the Places Nearby Search API.
package search

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/events"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

const (
	// placeType is the fixed category filter applied to every search.
	placeType = "restaurant"

	// sourceURLFormat builds a human-usable maps link from a place ID. The ID
	// itself is carried on the candidate; the URL is display-only.
	sourceURLFormat = "https://www.google.com/maps/search/?api=1&query=Google&query_place_id=%s"
)

// Query describes one search invocation. Immutable per call.
type Query struct {
	Origin       model.Coordinate
	RadiusMeters int
	Keyword      string // empty for an unscoped search
}

// Config bounds the retrieval loop. Zero values fall back to defaults.
type Config struct {
	// PageLimit caps pages fetched per query (default 10). Reaching the cap
	// with a continuation token still present is an intentional bounded
	// retrieval policy, not an error.
	PageLimit int

	// SettleDelay is how long a continuation token must rest before the
	// provider will accept it (default 2s).
	SettleDelay time.Duration
}

const (
	defaultPageLimit   = 10
	defaultSettleDelay = 2 * time.Second
)

// Engine retrieves candidates one page at a time, strictly sequentially.
type Engine struct {
	client      places.Client
	observer    events.Observer
	pageLimit   int
	settleDelay time.Duration
}

// NewEngine creates an Engine with the given client, observer, and bounds.
func NewEngine(client places.Client, observer events.Observer, cfg Config) *Engine {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if observer == nil {
		observer = events.NopObserver{}
	}
	return &Engine{
		client:      client,
		observer:    observer,
		pageLimit:   cfg.PageLimit,
		settleDelay: cfg.SettleDelay,
	}
}

// Search exhausts one query's pagination and returns the flat candidate
// sequence. On a query-scoped failure (transport, decode, or an error API
// status) the pages accumulated so far are still returned alongside the
// error; searches for other keywords are unaffected.
func (e *Engine) Search(ctx context.Context, q Query) ([]model.RawCandidate, error) {
	var out []model.RawCandidate
	st := NewPaginationState(e.pageLimit)

	for st.Phase == PhaseFetching || st.Phase == PhaseAwaitingToken {
		if st.Phase == PhaseAwaitingToken {
			if err := sleepContext(ctx, e.settleDelay); err != nil {
				st.Phase = PhaseFailed
				return out, eris.Wrap(err, "search: settle wait")
			}
			st.Phase = PhaseFetching
		}

		resp, err := e.client.NearbySearch(ctx, places.NearbySearchRequest{
			Latitude:     q.Origin.Latitude,
			Longitude:    q.Origin.Longitude,
			RadiusMeters: q.RadiusMeters,
			Type:         placeType,
			Keyword:      q.Keyword,
			PageToken:    st.Token,
		})
		if err != nil {
			st.Phase = PhaseFailed
			e.observer.OnDiagnostic(events.Diagnostic{
				Kind:      events.KindQueryFailed,
				Candidate: q.Keyword,
				Reason:    fmt.Sprintf("page %d fetch failed", st.PagesFetched+1),
				Err:       err,
			})
			return out, eris.Wrapf(err, "search: fetch page %d", st.PagesFetched+1)
		}
		st.PagesFetched++

		if resp.Status == places.StatusOK {
			out = append(out, e.collect(resp.Results)...)
			e.observer.OnDiagnostic(events.Diagnostic{
				Kind:      events.KindPageFetched,
				Candidate: q.Keyword,
				Reason:    fmt.Sprintf("page %d, %d results", st.PagesFetched, len(resp.Results)),
			})
		}

		st.Advance(resp.Status, resp.NextPageToken)

		if st.Phase == PhaseFailed {
			e.observer.OnDiagnostic(events.Diagnostic{
				Kind:      events.KindQueryFailed,
				Candidate: q.Keyword,
				Reason:    fmt.Sprintf("api status %s: %s", resp.Status, resp.ErrorMessage),
			})
			return out, eris.Errorf("search: api status %s: %s", resp.Status, resp.ErrorMessage)
		}
	}

	return out, nil
}

// collect converts raw place records to candidates, dropping any record that
// lacks the minimum useful fields: name, address, and stable identifier.
func (e *Engine) collect(results []places.Place) []model.RawCandidate {
	var out []model.RawCandidate
	for _, p := range results {
		if p.Name == "" || p.Vicinity == "" || p.PlaceID == "" {
			e.observer.OnDiagnostic(events.Diagnostic{
				Kind:      events.KindRecordDropped,
				Candidate: p.Name,
				Reason:    "missing name, address, or place_id",
			})
			continue
		}
		out = append(out, model.RawCandidate{
			Name:        p.Name,
			Address:     p.Vicinity,
			PlaceID:     p.PlaceID,
			Rating:      formatSignal(p.Rating),
			RatingCount: formatSignal(p.UserRatingsTotal),
			SourceURL:   fmt.Sprintf(sourceURLFormat, p.PlaceID),
		})
	}
	return out
}

// formatSignal renders a provider rating signal as numeric text, or the
// absent-value sentinel when the field was missing. Non-numeric provider
// values pass through verbatim so the filter can flag them as malformed
// rather than silently zeroing them.
func formatSignal(v any) string {
	switch t := v.(type) {
	case nil:
		return model.SentinelNA
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		if t == "" {
			return model.SentinelNA
		}
		return t
	default:
		return fmt.Sprint(t)
	}
}

// sleepContext blocks for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
