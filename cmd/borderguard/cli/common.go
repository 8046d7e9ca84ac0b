package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tkingovr/borderguard/api"
	"github.com/tkingovr/borderguard/internal/document"
	"github.com/tkingovr/borderguard/internal/loader"
	"github.com/tkingovr/borderguard/internal/policy"
	"github.com/tkingovr/borderguard/internal/reference"
)

func indexOptions() []reference.Option {
	return []reference.Option{
		reference.WithHomeNation(cfg.HomeNation),
		reference.WithVisaValidity(cfg.VisaValidity()),
	}
}

func newEngine(kind string) (policy.Engine, error) {
	if kind == "" {
		kind = cfg.Engine
	}
	engine, err := policy.New(kind, cfg.OPAPolicy, logger)
	if err != nil {
		return nil, fmt.Errorf("creating policy engine: %w", err)
	}
	return engine, nil
}

// referencePaths falls back to the configured reference files for empty flags.
func referencePaths(watchlistPath, countriesPath string) (string, string, error) {
	if watchlistPath == "" {
		watchlistPath = cfg.Watchlist
	}
	if countriesPath == "" {
		countriesPath = cfg.Countries
	}
	if watchlistPath == "" || countriesPath == "" {
		return "", "", fmt.Errorf("--watchlist and --countries are required (or set them in the config file)")
	}
	return watchlistPath, countriesPath, nil
}

// loadReference reads the watchlist and country table.
func loadReference(watchlistPath, countriesPath string) (*reference.Index, error) {
	watchlistPath, countriesPath, err := referencePaths(watchlistPath, countriesPath)
	if err != nil {
		return nil, err
	}
	countries, err := loader.LoadCountries(countriesPath)
	if err != nil {
		return nil, err
	}
	watchlist, err := loader.LoadWatchlist(watchlistPath)
	if err != nil {
		return nil, err
	}
	return reference.NewIndex(countries, watchlist, indexOptions()...), nil
}

func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := document.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: %w", s, err)
	}
	return t, nil
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeText(w io.Writer, resp *api.DecideResponse) error {
	for i, d := range resp.Results {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, d.Outcome, d.Rule, d.Message); err != nil {
			return err
		}
	}
	return nil
}
