package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkingovr/borderguard/internal/batch"
	"github.com/tkingovr/borderguard/internal/loader"
	"github.com/tkingovr/borderguard/internal/reference"
)

var (
	decideEntries   string
	decideWatchlist string
	decideCountries string
	decideEngine    string
	decideWorkers   int
	decideNow       string
	decideOutput    string
	decideDetailed  bool
)

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Decide a batch of traveller records",
	Long: `Decide reads a batch of traveller records together with a watchlist and a
country table and prints one outcome per traveller, in input order.
Inputs may be JSON or YAML (by file extension).`,
	Example: `  borderguard decide --entries entries.json --watchlist watchlist.json --countries countries.json
  borderguard decide --entries entries.yaml --watchlist wl.yaml --countries countries.yaml --engine opa --detailed -o yaml`,
	RunE: runDecide,
}

func init() {
	decideCmd.Flags().StringVar(&decideEntries, "entries", "", "traveller records file")
	decideCmd.Flags().StringVar(&decideWatchlist, "watchlist", "", "watchlist file (default from config)")
	decideCmd.Flags().StringVar(&decideCountries, "countries", "", "country table file (default from config)")
	decideCmd.Flags().StringVar(&decideEngine, "engine", "", "rule engine: pipeline or opa (default from config)")
	decideCmd.Flags().IntVar(&decideWorkers, "workers", 0, "travellers evaluated concurrently (default from config)")
	decideCmd.Flags().StringVar(&decideNow, "now", "", "evaluation date YYYY-MM-DD for visa validity (default today)")
	decideCmd.Flags().StringVarP(&decideOutput, "output", "o", "json", "output format: json, yaml or text")
	decideCmd.Flags().BoolVar(&decideDetailed, "detailed", false, "print rule and message for each traveller")
	_ = decideCmd.MarkFlagRequired("entries")
	rootCmd.AddCommand(decideCmd)
}

func runDecide(cmd *cobra.Command, args []string) error {
	now, err := parseNow(decideNow)
	if err != nil {
		return err
	}

	watchlistPath, countriesPath, err := referencePaths(decideWatchlist, decideCountries)
	if err != nil {
		return err
	}
	inputs, err := loader.LoadInputs(decideEntries, watchlistPath, countriesPath)
	if err != nil {
		return err
	}

	engine, err := newEngine(decideEngine)
	if err != nil {
		return err
	}

	workers := decideWorkers
	if workers == 0 {
		workers = cfg.Workers
	}

	ref := reference.NewIndex(inputs.Countries, inputs.Watchlist, indexOptions()...)
	runner := batch.NewRunner(engine, logger, nil, workers)
	resp, err := runner.Run(cmd.Context(), inputs.Entries, ref, now)
	if err != nil {
		return fmt.Errorf("deciding batch: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case decideOutput == "text":
		return writeText(out, resp)
	case decideDetailed:
		return writeOutput(out, decideOutput, resp)
	default:
		return writeOutput(out, decideOutput, resp.Outcomes)
	}
}
