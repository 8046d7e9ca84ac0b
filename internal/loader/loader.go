// Package loader reads traveller batches and reference data from JSON or
// YAML files.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tkingovr/borderguard/api"
)

// ErrInputUnavailable is wrapped by every error that prevents an input from
// being loaded. No decisions are produced for a batch whose inputs fail.
var ErrInputUnavailable = errors.New("input unavailable")

// Inputs are the three parsed inputs of a decision batch.
type Inputs struct {
	Entries   []api.Traveller
	Watchlist []api.WatchlistEntry
	Countries map[string]api.CountryPolicy
}

// LoadInputs reads the traveller batch, watchlist and country table.
func LoadInputs(entriesPath, watchlistPath, countriesPath string) (*Inputs, error) {
	countries, err := LoadCountries(countriesPath)
	if err != nil {
		return nil, err
	}
	watchlist, err := LoadWatchlist(watchlistPath)
	if err != nil {
		return nil, err
	}
	entries, err := LoadTravellers(entriesPath)
	if err != nil {
		return nil, err
	}
	return &Inputs{Entries: entries, Watchlist: watchlist, Countries: countries}, nil
}

// LoadTravellers reads an ordered list of traveller records. A record that
// cannot be decoded fails the whole list.
func LoadTravellers(path string) ([]api.Traveller, error) {
	var entries []api.Traveller
	if err := decodeFile(path, "traveller entries", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadWatchlist reads a watchlist.
func LoadWatchlist(path string) ([]api.WatchlistEntry, error) {
	var watchlist []api.WatchlistEntry
	if err := decodeFile(path, "watchlist", &watchlist); err != nil {
		return nil, err
	}
	return watchlist, nil
}

// LoadCountries reads and validates a country table keyed by country code.
func LoadCountries(path string) (map[string]api.CountryPolicy, error) {
	var countries map[string]api.CountryPolicy
	if err := decodeFile(path, "country table", &countries); err != nil {
		return nil, err
	}
	if err := ValidateCountries(countries); err != nil {
		return nil, fmt.Errorf("%w: country table %s: %w", ErrInputUnavailable, path, err)
	}
	return countries, nil
}

// ValidateCountries checks that every entry's code agrees with its key,
// filling in empty codes from the key. Keys are case-insensitive, so "KAN"
// and "kan" in one table are duplicates.
func ValidateCountries(countries map[string]api.CountryPolicy) error {
	seen := make(map[string]struct{}, len(countries))
	for key, cp := range countries {
		if key == "" {
			return errors.New("empty country code")
		}
		code := strings.ToUpper(key)
		if _, dup := seen[code]; dup {
			return fmt.Errorf("duplicate country code %q", code)
		}
		seen[code] = struct{}{}
		if cp.Code == "" {
			cp.Code = key
			countries[key] = cp
			continue
		}
		if !strings.EqualFold(cp.Code, key) {
			return fmt.Errorf("entry %q has code %q", key, cp.Code)
		}
	}
	return nil
}

func decodeFile(path, what string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrInputUnavailable, what, err)
	}
	if err := Decode(data, FormatOf(path), v); err != nil {
		return fmt.Errorf("%w: parsing %s %s: %w", ErrInputUnavailable, what, path, err)
	}
	return nil
}

// Format identifies the encoding of an input file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from the file extension; anything but .yaml/.yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses data in the given format into v.
func Decode(data []byte, format Format, v any) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}
