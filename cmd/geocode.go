package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/pkg/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>",
	Short: "Resolve a free-text address to coordinates",
	Long:  "One-shot Nominatim lookup, useful for checking how a base address resolves before a run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []geocode.Option{}
		if cfg.Geocode.BaseURL != "" {
			opts = append(opts, geocode.WithBaseURL(cfg.Geocode.BaseURL))
		}
		client := geocode.NewClient(opts...)

		result, err := client.Geocode(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "geocode")
		}
		if !result.Matched {
			return eris.Errorf("geocode: no match for %q", args[0])
		}

		fmt.Fprintf(os.Stdout, "%f,%f\n", result.Latitude, result.Longitude)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
