package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/events"
	"github.com/sells-group/leadgen-cli/internal/geo"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/geocode"
)

// distanceSlack absorbs haversine rounding so a candidate sitting exactly on
// the radius stays inside the inclusive boundary.
const distanceSlack = 1e-9

// FilterConfig holds the inclusion thresholds. Both are inclusive.
type FilterConfig struct {
	RadiusMiles float64
	MinRatings  int
}

// Filter decides lead inclusion by geographic distance and rating count.
type Filter struct {
	geocoder geocode.Client
	observer events.Observer
	cfg      FilterConfig
}

// NewFilter creates a Filter with the given geocoder, observer, and thresholds.
func NewFilter(geocoder geocode.Client, observer events.Observer, cfg FilterConfig) *Filter {
	if observer == nil {
		observer = events.NopObserver{}
	}
	return &Filter{geocoder: geocoder, observer: observer, cfg: cfg}
}

// Run evaluates each candidate in input order and returns the qualifying
// leads. Candidate-scoped failures (unresolvable address, malformed rating
// count, threshold miss) skip that candidate with a diagnostic and never
// abort the pass. The geocoder's internal limiter spaces out the per-candidate
// resolution calls.
func (f *Filter) Run(ctx context.Context, candidates []model.RawCandidate, origin model.Coordinate) ([]model.Lead, error) {
	var leads []model.Lead

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return leads, err
		}

		resolved, err := f.geocoder.Geocode(ctx, c.Address)
		if err != nil || !resolved.Matched {
			f.observer.OnDiagnostic(events.Diagnostic{
				Kind:      events.KindGeocodeFailed,
				Candidate: c.Name,
				Reason:    "address did not resolve: " + c.Address,
				Err:       err,
			})
			continue
		}

		distance := geo.DistanceMiles(origin, model.Coordinate{
			Latitude:  resolved.Latitude,
			Longitude: resolved.Longitude,
		})

		count, ok := f.normalizeRatingCount(c)
		if !ok {
			continue
		}

		// Both conditions are evaluated and reported independently so a
		// rejection log always names every failed threshold.
		withinRadius := distance <= f.cfg.RadiusMiles+distanceSlack
		enoughRatings := count >= f.cfg.MinRatings

		if !withinRadius {
			f.observer.OnDiagnostic(events.Diagnostic{
				Kind:      events.KindOutsideRadius,
				Candidate: c.Name,
				Reason:    fmt.Sprintf("%.2f miles > %.2f miles", distance, f.cfg.RadiusMiles),
			})
		}
		if !enoughRatings {
			f.observer.OnDiagnostic(events.Diagnostic{
				Kind:      events.KindBelowMinRatings,
				Candidate: c.Name,
				Reason:    fmt.Sprintf("%d ratings < %d required", count, f.cfg.MinRatings),
			})
		}
		if !withinRadius || !enoughRatings {
			continue
		}

		f.observer.OnDiagnostic(events.Diagnostic{
			Kind:      events.KindLeadAccepted,
			Candidate: c.Name,
			Reason:    fmt.Sprintf("%.2f miles, %d ratings", distance, count),
		})

		leads = append(leads, model.Lead{
			Name:        c.Name,
			Address:     c.Address, // original provider address, not the re-resolved form
			Rating:      c.Rating,
			RatingCount: count,
			SourceURL:   c.SourceURL,
		})
	}

	return leads, nil
}

// normalizeRatingCount parses the popularity signal. The absent-value
// sentinel normalizes to zero; a non-sentinel value that fails to parse as a
// non-negative integer is malformed input and disqualifies the candidate
// rather than being treated as zero.
func (f *Filter) normalizeRatingCount(c model.RawCandidate) (int, bool) {
	s := strings.TrimSpace(c.RatingCount)
	if s == "" || strings.EqualFold(s, model.SentinelNA) {
		return 0, true
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		f.observer.OnDiagnostic(events.Diagnostic{
			Kind:      events.KindMalformedRating,
			Candidate: c.Name,
			Reason:    fmt.Sprintf("unparseable rating count %q", c.RatingCount),
			Err:       err,
		})
		return 0, false
	}

	return n, true
}
