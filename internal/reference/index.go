// Package reference answers questions about a traveller against the
// country table and the watchlist.
package reference

import (
	"strings"
	"time"

	"github.com/tkingovr/borderguard/api"
	"github.com/tkingovr/borderguard/internal/document"
)

const (
	// DefaultHomeNation is the country code of returning citizens.
	DefaultHomeNation = "KAN"

	// DefaultVisaValidity is how long a visa stays valid after its issue date.
	DefaultVisaValidity = 730 * 24 * time.Hour
)

type nameKey struct {
	first, last string
}

// Index is a read-only view of the reference data built once per batch.
// It is safe for concurrent use.
type Index struct {
	countries map[string]api.CountryPolicy
	passports map[string]api.WatchlistEntry
	names     map[nameKey]api.WatchlistEntry

	watchlistLen int
	homeNation   string
	visaValidity time.Duration
}

// Option configures an Index.
type Option func(*Index)

// WithHomeNation sets the country code whose returning residents are citizens.
func WithHomeNation(code string) Option {
	return func(ix *Index) {
		if code != "" {
			ix.homeNation = code
		}
	}
}

// WithVisaValidity sets the trailing window in which a visa issue date is valid.
func WithVisaValidity(d time.Duration) Option {
	return func(ix *Index) {
		if d > 0 {
			ix.visaValidity = d
		}
	}
}

// NewIndex builds the lookup maps for countries and watchlist. Country codes
// and watchlist keys are compared case-insensitively.
func NewIndex(countries map[string]api.CountryPolicy, watchlist []api.WatchlistEntry, opts ...Option) *Index {
	ix := &Index{
		countries:    make(map[string]api.CountryPolicy, len(countries)),
		passports:    make(map[string]api.WatchlistEntry, len(watchlist)),
		names:        make(map[nameKey]api.WatchlistEntry, len(watchlist)),
		watchlistLen: len(watchlist),
		homeNation:   DefaultHomeNation,
		visaValidity: DefaultVisaValidity,
	}
	for _, opt := range opts {
		opt(ix)
	}

	for code, cp := range countries {
		ix.countries[normalize(code)] = cp
	}
	for _, w := range watchlist {
		if p := normalize(w.Passport); p != "" {
			ix.passports[p] = w
		}
		if w.FirstName != "" && w.LastName != "" {
			ix.names[nameKey{normalize(w.FirstName), normalize(w.LastName)}] = w
		}
	}
	return ix
}

// Country returns the policy for code.
func (ix *Index) Country(code string) (api.CountryPolicy, bool) {
	cp, ok := ix.countries[normalize(code)]
	return cp, ok
}

// HomeNation returns the configured home nation code.
func (ix *Index) HomeNation() string { return ix.homeNation }

// Len returns the number of countries and watchlist entries indexed.
func (ix *Index) Len() (countries, watchlist int) {
	return len(ix.countries), ix.watchlistLen
}

// MedicalAdvisoryHit reports whether the traveller comes from, or when no
// origin is given travels through, a country under a medical advisory.
func (ix *Index) MedicalAdvisoryHit(t *api.Traveller) bool {
	var loc *api.Location
	switch {
	case t.From != nil:
		loc = t.From
	case t.Via != nil:
		loc = t.Via
	default:
		return false
	}
	cp, ok := ix.Country(loc.Country)
	return ok && cp.MedicalAdvisory != ""
}

// VisaRequired reports whether the origin country requires a visitor visa
// or the transit country requires a transit visa.
func (ix *Index) VisaRequired(t *api.Traveller) bool {
	if t.From != nil {
		if cp, ok := ix.Country(t.From.Country); ok && bool(cp.VisitorVisaRequired) {
			return true
		}
	}
	if t.Via != nil {
		if cp, ok := ix.Country(t.Via.Country); ok && bool(cp.TransitVisaRequired) {
			return true
		}
	}
	return false
}

// VisaStillValid reports whether the traveller holds a visa issued within
// the validity window ending at now. A missing or unparseable date is not valid.
func (ix *Index) VisaStillValid(t *api.Traveller, now time.Time) bool {
	if t.Visa == nil {
		return false
	}
	issued, err := document.ParseDate(t.Visa.Date)
	if err != nil {
		return false
	}
	return issued.After(now.Add(-ix.visaValidity))
}

// WatchlistMatch reports whether the traveller's passport or full name is on
// the watchlist.
func (ix *Index) WatchlistMatch(t *api.Traveller) bool {
	if _, ok := ix.passports[normalize(t.Passport)]; ok && t.Passport != "" {
		return true
	}
	if t.FirstName == "" || t.LastName == "" {
		return false
	}
	_, ok := ix.names[nameKey{normalize(t.FirstName), normalize(t.LastName)}]
	return ok
}

// IsReturningCitizen reports whether the traveller lives in the home nation
// and is returning there.
func (ix *Index) IsReturningCitizen(t *api.Traveller) bool {
	if t.Home == nil {
		return false
	}
	return strings.EqualFold(t.Home.Country, ix.homeNation) &&
		strings.EqualFold(t.EntryReason, api.ReasonReturning)
}

func normalize(s string) string {
	return strings.ToUpper(s)
}
