package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Outcome is the admissibility decision attached to a traveller record.
type Outcome string

const (
	OutcomeAccept     Outcome = "Accept"
	OutcomeReject     Outcome = "Reject"
	OutcomeSecondary  Outcome = "Secondary"
	OutcomeQuarantine Outcome = "Quarantine"
)

// Entry reasons accepted on a traveller record.
const (
	ReasonVisit     = "visit"
	ReasonTransit   = "transit"
	ReasonReturning = "returning"
)

// Location is a city/region/country triple.
type Location struct {
	City    string `json:"city" yaml:"city" validate:"required"`
	Region  string `json:"region" yaml:"region" validate:"required"`
	Country string `json:"country" yaml:"country" validate:"required"`
}

// Visa is the visa a traveller presents at the border.
type Visa struct {
	Date string `json:"date" yaml:"date"`
	Code string `json:"code" yaml:"code"`
}

// Traveller is one entrant's submitted data for a single crossing attempt.
type Traveller struct {
	FirstName   string    `json:"first_name" yaml:"first_name" validate:"required"`
	LastName    string    `json:"last_name" yaml:"last_name" validate:"required"`
	Passport    string    `json:"passport" yaml:"passport" validate:"required"`
	BirthDate   string    `json:"birth_date" yaml:"birth_date" validate:"required"`
	Home        *Location `json:"home,omitempty" yaml:"home,omitempty" validate:"required"`
	From        *Location `json:"from,omitempty" yaml:"from,omitempty" validate:"required"`
	Via         *Location `json:"via,omitempty" yaml:"via,omitempty" validate:"-"`
	EntryReason string    `json:"entry_reason" yaml:"entry_reason" validate:"required"`
	Visa        *Visa     `json:"visa,omitempty" yaml:"visa,omitempty" validate:"-"`
}

// WatchlistEntry names a person or passport that requires secondary processing.
type WatchlistEntry struct {
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	Passport  string `json:"passport" yaml:"passport"`
}

// CountryPolicy holds the entry requirements for travellers from or through a country.
type CountryPolicy struct {
	Code                string `json:"code" yaml:"code"`
	Name                string `json:"name,omitempty" yaml:"name,omitempty"`
	VisitorVisaRequired Flag   `json:"visitor_visa_required" yaml:"visitor_visa_required"`
	TransitVisaRequired Flag   `json:"transit_visa_required" yaml:"transit_visa_required"`
	MedicalAdvisory     string `json:"medical_advisory" yaml:"medical_advisory"`
}

// Flag is a boolean that also decodes the "1"/"0" strings used by country tables.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	b, err := parseFlag(v)
	if err != nil {
		return err
	}
	*f = Flag(b)
	return nil
}

func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	b, err := parseFlag(v)
	if err != nil {
		return err
	}
	*f = Flag(b)
	return nil
}

func parseFlag(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case float64:
		return t != 0, nil
	case int:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes":
			return true, nil
		case "", "0", "false", "no":
			return false, nil
		}
	}
	return false, fmt.Errorf("invalid flag value %v", v)
}

// DecideRequest is the body of POST /api/v1/decide.
// Watchlist and Countries fall back to the server's reference data when omitted.
type DecideRequest struct {
	Entries   []Traveller              `json:"entries"`
	Watchlist []WatchlistEntry         `json:"watchlist,omitempty"`
	Countries map[string]CountryPolicy `json:"countries,omitempty"`
}

// Decision is the detailed result for a single traveller.
type Decision struct {
	Outcome          Outcome `json:"outcome" yaml:"outcome"`
	Rule             string  `json:"rule" yaml:"rule"`
	Message          string  `json:"message,omitempty" yaml:"message,omitempty"`
	ReturningCitizen bool    `json:"returning_citizen,omitempty" yaml:"returning_citizen,omitempty"`
}

// DecideResponse is the result of a batch decision.
type DecideResponse struct {
	BatchID  string     `json:"batch_id" yaml:"batch_id"`
	Outcomes []Outcome  `json:"outcomes" yaml:"outcomes"`
	Results  []Decision `json:"results" yaml:"results"`
}

// CheckRequest is the body of POST /api/v1/check.
// Watchlist and Countries fall back to the server's reference data when omitted.
type CheckRequest struct {
	Traveller Traveller                `json:"traveller"`
	Watchlist []WatchlistEntry         `json:"watchlist,omitempty"`
	Countries map[string]CountryPolicy `json:"countries,omitempty"`
}

// ErrorResponse is returned by the HTTP API on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
