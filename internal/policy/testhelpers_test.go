package policy

import (
	"time"

	"github.com/tkingovr/borderguard/api"
	"github.com/tkingovr/borderguard/internal/reference"
)

var testNow = time.Date(2015, 1, 1, 12, 0, 0, 0, time.UTC)

func testReference() *reference.Index {
	return reference.NewIndex(
		map[string]api.CountryPolicy{
			"KAN": {Code: "KAN"},
			"HGR": {Code: "HGR"},
			"JIK": {Code: "JIK", VisitorVisaRequired: true},
			"KRA": {Code: "KRA", TransitVisaRequired: true},
			"LUG": {Code: "LUG", MedicalAdvisory: "CHOLERA"},
		},
		[]api.WatchlistEntry{
			{FirstName: "Gerald", LastName: "Mulroney", Passport: "JO4SI-8KLZU-CAZ9O-4PRMF-KSR1N"},
		},
	)
}

func loc(country string) *api.Location {
	return &api.Location{City: "Bala", Region: "North", Country: country}
}

func returningCitizen() *api.Traveller {
	return &api.Traveller{
		FirstName:   "Amelia",
		LastName:    "Wong",
		Passport:    "A2B4C-6D8E0-F1G3H-5I7J9-K0L2M",
		BirthDate:   "1960-03-14",
		Home:        loc("KAN"),
		From:        loc("HGR"),
		EntryReason: "returning",
	}
}

type scenario struct {
	name      string
	traveller func() *api.Traveller
	outcome   api.Outcome
	rule      string
}

func scenarios() []scenario {
	return []scenario{
		{
			name:      "returning citizen",
			traveller: returningCitizen,
			outcome:   api.OutcomeAccept,
			rule:      RuleDefault,
		},
		{
			name: "watchlist passport",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.Passport = "jo4si-8klzu-caz9o-4prmf-ksr1n"
				return t
			},
			outcome: api.OutcomeSecondary,
			rule:    RuleWatchlist,
		},
		{
			name: "watchlist name",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.FirstName, t.LastName = "GERALD", "mulroney"
				return t
			},
			outcome: api.OutcomeSecondary,
			rule:    RuleWatchlist,
		},
		{
			name: "quarantine beats incomplete record",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.From = loc("LUG")
				t.BirthDate = ""
				return t
			},
			outcome: api.OutcomeQuarantine,
			rule:    RuleMedicalAdvisory,
		},
		{
			name: "quarantine beats watchlist",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.From = loc("LUG")
				t.Passport = "JO4SI-8KLZU-CAZ9O-4PRMF-KSR1N"
				return t
			},
			outcome: api.OutcomeQuarantine,
			rule:    RuleMedicalAdvisory,
		},
		{
			name: "quarantine via when from absent",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.From = nil
				t.Via = loc("LUG")
				return t
			},
			outcome: api.OutcomeQuarantine,
			rule:    RuleMedicalAdvisory,
		},
		{
			name: "incomplete record",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.Home.Region = ""
				return t
			},
			outcome: api.OutcomeReject,
			rule:    RuleIncompleteRecord,
		},
		{
			name: "visit without visa",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.From, t.EntryReason = loc("JIK"), "visit"
				return t
			},
			outcome: api.OutcomeReject,
			rule:    RuleVisitVisa,
		},
		{
			name: "visit with expired visa",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.From, t.EntryReason = loc("JIK"), "visit"
				t.Visa = &api.Visa{Date: "2010-12-31", Code: "H2K9P-Z7QW3"}
				return t
			},
			outcome: api.OutcomeReject,
			rule:    RuleVisitVisa,
		},
		{
			name: "visit with valid visa",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.From, t.EntryReason = loc("JIK"), "visit"
				t.Visa = &api.Visa{Date: "2014-06-01", Code: "H2K9P-Z7QW3"}
				return t
			},
			outcome: api.OutcomeAccept,
			rule:    RuleDefault,
		},
		{
			name: "transit without visa",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.Via, t.EntryReason = loc("KRA"), "transit"
				return t
			},
			outcome: api.OutcomeReject,
			rule:    RuleTransitVisa,
		},
		{
			name: "returning through transit-visa country",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.Via = loc("KRA")
				return t
			},
			outcome: api.OutcomeAccept,
			rule:    RuleDefault,
		},
		{
			name: "malformed passport",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.Passport = "12345-6789"
				return t
			},
			outcome: api.OutcomeReject,
			rule:    RuleDocumentFormat,
		},
		{
			name: "malformed visa code",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.Visa = &api.Visa{Date: "2014-06-01", Code: "H2K9PZ7QW3"}
				return t
			},
			outcome: api.OutcomeReject,
			rule:    RuleDocumentFormat,
		},
		{
			name: "malformed passport on watchlist name",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.FirstName, t.LastName = "Gerald", "Mulroney"
				t.Passport = "bad"
				return t
			},
			outcome: api.OutcomeReject,
			rule:    RuleDocumentFormat,
		},
		{
			name: "unknown origin country",
			traveller: func() *api.Traveller {
				t := returningCitizen()
				t.From, t.EntryReason = loc("ZZZ"), "visit"
				return t
			},
			outcome: api.OutcomeAccept,
			rule:    RuleDefault,
		},
	}
}
