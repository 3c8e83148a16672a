package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/events"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/search"
	"github.com/sells-group/leadgen-cli/internal/sink"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/pkg/geocode"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

var (
	runOutput   string
	runFormat   string
	runKeywords string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the lead aggregation pipeline",
	Long: `Resolves the configured base address, searches Google Places for
restaurants around it (once per keyword, or once unscoped), deduplicates by
place ID, filters by distance and rating count, and writes the qualified
leads.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "run"))

		keywords := cfg.SearchKeywords
		if runKeywords != "" {
			keywords = splitKeywords(runKeywords)
		}
		outPath := cfg.Output.Path
		if runOutput != "" {
			outPath = runOutput
		}
		format := cfg.Output.Format
		if runFormat != "" {
			format = runFormat
		}

		observer := events.NewZapObserver(zap.L())

		geocodeOpts := []geocode.Option{}
		if cfg.Geocode.BaseURL != "" {
			geocodeOpts = append(geocodeOpts, geocode.WithBaseURL(cfg.Geocode.BaseURL))
		}
		if cfg.Geocode.RateLimitRPS > 0 {
			geocodeOpts = append(geocodeOpts, geocode.WithRateLimit(cfg.Geocode.RateLimitRPS))
		}
		geocoder := geocode.NewClient(geocodeOpts...)

		placesOpts := []places.Option{}
		if cfg.Places.BaseURL != "" {
			placesOpts = append(placesOpts, places.WithBaseURL(cfg.Places.BaseURL))
		}
		placesClient := places.NewClient(cfg.GoogleMapsAPIKey, placesOpts...)

		engine := search.NewEngine(placesClient, observer, search.Config{
			PageLimit:   cfg.Search.PageLimit,
			SettleDelay: time.Duration(cfg.Search.SettleDelaySecs) * time.Second,
		})

		p := pipeline.New(geocoder, engine, observer, pipeline.Config{
			BaseAddress: cfg.BaseAddress,
			RadiusMiles: cfg.SearchRadiusMile,
			MinRatings:  cfg.MinRatingsSource,
			Keywords:    keywords,
		})

		var st *store.SQLiteStore
		var runID string
		if cfg.Store.Path != "" {
			var err error
			st, err = store.NewSQLite(cfg.Store.Path)
			if err != nil {
				return eris.Wrap(err, "run: open store")
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "run: migrate store")
			}
			run, err := st.CreateRun(ctx, cfg.BaseAddress, keywords)
			if err != nil {
				return eris.Wrap(err, "run: create run record")
			}
			runID = run.ID
		}

		result, err := p.Run(ctx)
		if err != nil {
			if st != nil {
				_ = st.CompleteRun(context.WithoutCancel(ctx), runID, 0, 0, 0, err.Error())
			}
			return eris.Wrap(err, "run: pipeline")
		}

		switch {
		case result.Fetched == 0 && len(result.FailedKeywords) > 0:
			log.Error("no candidates retrieved, all queries failed",
				zap.Strings("failed_keywords", result.FailedKeywords),
			)
		case result.Fetched == 0:
			log.Warn("no candidates found near base address")
		case len(result.Leads) == 0:
			log.Warn("no candidates matched the filtering criteria",
				zap.Int("unique_candidates", result.Unique),
			)
		default:
			log.Info("pipeline complete",
				zap.Int("fetched", result.Fetched),
				zap.Int("unique", result.Unique),
				zap.Int("leads", len(result.Leads)),
			)
		}

		if len(result.Leads) > 0 {
			var out sink.Sink
			switch format {
			case "xlsx":
				out = sink.NewXLSXSink(outPath)
			default:
				out = sink.NewCSVSink(outPath)
			}
			if err := out.Write(ctx, result.Leads); err != nil {
				return eris.Wrap(err, "run: write leads")
			}
			log.Info("leads written", zap.String("path", outPath), zap.Int("count", len(result.Leads)))

			if st != nil {
				if err := sink.NewStoreSink(st, runID).Write(ctx, result.Leads); err != nil {
					log.Error("persist leads failed", zap.Error(err))
				}
			}
		}

		if st != nil {
			if err := st.CompleteRun(ctx, runID, result.Fetched, result.Unique, len(result.Leads), ""); err != nil {
				log.Error("complete run record failed", zap.Error(err))
			}
		}

		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runOutput, "output", "", "output file path (default from config)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "output format: csv or xlsx (default from config)")
	runCmd.Flags().StringVar(&runKeywords, "keywords", "", "comma-separated keyword overrides (default from config)")
	rootCmd.AddCommand(runCmd)
}

// splitKeywords parses a comma-separated flag value, dropping empty entries.
func splitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
