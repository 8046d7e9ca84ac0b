package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkingovr/borderguard/api"
	"github.com/tkingovr/borderguard/internal/batch"
	"github.com/tkingovr/borderguard/internal/loader"
)

var (
	checkTraveller     string
	checkTravellerFile string
	checkWatchlist     string
	checkCountries     string
	checkEngine        string
	checkNow           string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run the admission rules for a single traveller",
	Long: `Check what outcome a single traveller record would receive, and which
rule decided it. Useful for testing reference data and debugging decisions.`,
	Example: `  borderguard check --watchlist wl.json --countries countries.json --traveller '{"first_name":"Ann", ...}'
  borderguard check -c borderguard.yaml --traveller-file ann.json --engine opa`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkTraveller, "traveller", "", "traveller record as JSON")
	checkCmd.Flags().StringVar(&checkTravellerFile, "traveller-file", "", "file holding one traveller record (JSON or YAML)")
	checkCmd.Flags().StringVar(&checkWatchlist, "watchlist", "", "watchlist file (default from config)")
	checkCmd.Flags().StringVar(&checkCountries, "countries", "", "country table file (default from config)")
	checkCmd.Flags().StringVar(&checkEngine, "engine", "", "rule engine: pipeline or opa (default from config)")
	checkCmd.Flags().StringVar(&checkNow, "now", "", "evaluation date YYYY-MM-DD for visa validity (default today)")
	checkCmd.MarkFlagsOneRequired("traveller", "traveller-file")
	checkCmd.MarkFlagsMutuallyExclusive("traveller", "traveller-file")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	traveller, err := readTraveller()
	if err != nil {
		return err
	}
	now, err := parseNow(checkNow)
	if err != nil {
		return err
	}

	ref, err := loadReference(checkWatchlist, checkCountries)
	if err != nil {
		return err
	}
	engine, err := newEngine(checkEngine)
	if err != nil {
		return err
	}

	result, err := batch.NewRunner(engine, logger, nil, 1).Check(cmd.Context(), traveller, ref, now)
	if err != nil {
		return fmt.Errorf("evaluation error: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), "json", result.Decision())
}

func readTraveller() (*api.Traveller, error) {
	var t api.Traveller
	if checkTraveller != "" {
		if err := loader.Decode([]byte(checkTraveller), loader.FormatJSON, &t); err != nil {
			return nil, fmt.Errorf("%w: parsing --traveller: %w", loader.ErrInputUnavailable, err)
		}
		return &t, nil
	}
	data, err := os.ReadFile(checkTravellerFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading traveller: %w", loader.ErrInputUnavailable, err)
	}
	if err := loader.Decode(data, loader.FormatOf(checkTravellerFile), &t); err != nil {
		return nil, fmt.Errorf("%w: parsing traveller %s: %w", loader.ErrInputUnavailable, checkTravellerFile, err)
	}
	return &t, nil
}
