// Package pipeline wires the lead aggregation stages: origin resolution,
// keyword fan-out search, deduplication, and the distance/rating filter.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/events"
	"github.com/sells-group/leadgen-cli/internal/geo"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/search"
	"github.com/sells-group/leadgen-cli/pkg/geocode"
)

// Config holds one run's parameters. Immutable for the run's duration.
type Config struct {
	BaseAddress string
	RadiusMiles float64
	MinRatings  int
	Keywords    []string // empty means a single unscoped search
}

// Result summarizes a completed run. No qualifying leads is distinct from an
// outright fetch failure: Fetched reports what retrieval produced, and
// FailedKeywords names queries that aborted early.
type Result struct {
	Origin         model.Coordinate
	Fetched        int
	Unique         int
	Leads          []model.Lead
	FailedKeywords []string
}

// Pipeline runs the full aggregation sequence, strictly sequentially. The
// only mutable state crossing stage boundaries is the dedup index, owned by
// the Deduplicator for the duration of one run.
type Pipeline struct {
	geocoder geocode.Client
	engine   *search.Engine
	dedup    *Deduplicator
	filter   *Filter
	cfg      Config
}

// New assembles a Pipeline from its collaborators.
func New(geocoder geocode.Client, engine *search.Engine, observer events.Observer, cfg Config) *Pipeline {
	return &Pipeline{
		geocoder: geocoder,
		engine:   engine,
		dedup:    NewDeduplicator(observer),
		filter: NewFilter(geocoder, observer, FilterConfig{
			RadiusMiles: cfg.RadiusMiles,
			MinRatings:  cfg.MinRatings,
		}),
		cfg: cfg,
	}
}

// Run executes the pipeline. A fatal error (origin address that does not
// resolve, cancelled context) aborts with no partial output. A failed keyword
// query is logged and skipped; its accumulated pages still contribute.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("base_address", p.cfg.BaseAddress))

	resolved, err := p.geocoder.Geocode(ctx, p.cfg.BaseAddress)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: resolve origin address")
	}
	if !resolved.Matched {
		return nil, eris.Errorf("pipeline: origin address %q did not resolve", p.cfg.BaseAddress)
	}
	origin := model.Coordinate{Latitude: resolved.Latitude, Longitude: resolved.Longitude}
	log.Info("origin resolved",
		zap.Float64("latitude", origin.Latitude),
		zap.Float64("longitude", origin.Longitude),
	)

	radiusMeters := int(p.cfg.RadiusMiles * geo.MetersPerMile)

	// Keyword fan-out, configured order. An empty keyword list degenerates to
	// one unscoped query.
	keywords := p.cfg.Keywords
	if len(keywords) == 0 {
		keywords = []string{""}
	}

	result := &Result{Origin: origin}
	var sequences [][]model.RawCandidate

	for _, kw := range keywords {
		candidates, searchErr := p.engine.Search(ctx, search.Query{
			Origin:       origin,
			RadiusMeters: radiusMeters,
			Keyword:      kw,
		})
		result.Fetched += len(candidates)
		if len(candidates) > 0 {
			sequences = append(sequences, candidates)
		}
		if searchErr != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "pipeline: cancelled")
			}
			// Query-scoped: keep whatever pages came back, move on.
			result.FailedKeywords = append(result.FailedKeywords, kw)
			log.Warn("keyword query failed",
				zap.String("keyword", kw),
				zap.Int("partial_results", len(candidates)),
				zap.Error(searchErr),
			)
			continue
		}
		log.Info("keyword query complete",
			zap.String("keyword", kw),
			zap.Int("results", len(candidates)),
		)
	}

	merged := p.dedup.Merge(sequences...)
	result.Unique = len(merged)
	log.Info("candidates merged",
		zap.Int("fetched", result.Fetched),
		zap.Int("unique", result.Unique),
	)

	if len(merged) == 0 {
		return result, nil
	}

	leads, err := p.filter.Run(ctx, merged, origin)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: filter")
	}
	result.Leads = leads

	return result, nil
}
