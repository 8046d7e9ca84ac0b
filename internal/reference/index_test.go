package reference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tkingovr/borderguard/api"
)

var testNow = time.Date(2015, 1, 1, 12, 0, 0, 0, time.UTC)

func testCountries() map[string]api.CountryPolicy {
	return map[string]api.CountryPolicy{
		"KAN": {Code: "KAN"},
		"HGR": {Code: "HGR"},
		"JIK": {Code: "JIK", VisitorVisaRequired: true},
		"KRA": {Code: "KRA", TransitVisaRequired: true},
		"BOT": {Code: "BOT", VisitorVisaRequired: true, TransitVisaRequired: true},
		"LUG": {Code: "LUG", MedicalAdvisory: "CHOLERA"},
	}
}

func testWatchlist() []api.WatchlistEntry {
	return []api.WatchlistEntry{
		{FirstName: "Gerald", LastName: "Mulroney", Passport: "JO4SI-8KLZU-CAZ9O-4PRMF-KSR1N"},
		{FirstName: "Wanda", LastName: "Bravo", Passport: ""},
		{FirstName: "", LastName: "", Passport: "QZ7YT-4B2LM-8HKE0-W2D9P-6NVT1"},
	}
}

func testIndex(opts ...Option) *Index {
	return NewIndex(testCountries(), testWatchlist(), opts...)
}

func loc(country string) *api.Location {
	return &api.Location{City: "Bala", Region: "North", Country: country}
}

func TestNewIndex_Len(t *testing.T) {
	countries, watchlist := testIndex().Len()
	assert.Equal(t, 6, countries)
	assert.Equal(t, 3, watchlist)
}

func TestCountry_CaseInsensitive(t *testing.T) {
	ix := testIndex()
	cp, ok := ix.Country("jik")
	assert.True(t, ok)
	assert.Equal(t, "JIK", cp.Code)

	_, ok = ix.Country("ZZZ")
	assert.False(t, ok)
}

func TestMedicalAdvisoryHit(t *testing.T) {
	ix := testIndex()

	tests := []struct {
		name string
		from *api.Location
		via  *api.Location
		want bool
	}{
		{"from advisory country", loc("LUG"), nil, true},
		{"from clean country", loc("HGR"), nil, false},
		{"via advisory but from present", loc("HGR"), loc("LUG"), false},
		{"via advisory and from absent", nil, loc("LUG"), true},
		{"via clean and from absent", nil, loc("HGR"), false},
		{"unknown country", loc("ZZZ"), nil, false},
		{"lowercase code", loc("lug"), nil, true},
		{"no locations", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &api.Traveller{From: tt.from, Via: tt.via}
			assert.Equal(t, tt.want, ix.MedicalAdvisoryHit(tr))
		})
	}
}

func TestVisaRequired(t *testing.T) {
	ix := testIndex()

	tests := []struct {
		name string
		from *api.Location
		via  *api.Location
		want bool
	}{
		{"from visitor-visa country", loc("JIK"), nil, true},
		{"from transit-only country", loc("KRA"), nil, false},
		{"via transit-visa country", loc("HGR"), loc("KRA"), true},
		{"via visitor-only country", loc("HGR"), loc("JIK"), false},
		{"both flags from", loc("BOT"), nil, true},
		{"both flags via", loc("HGR"), loc("BOT"), true},
		{"unknown countries", loc("ZZZ"), loc("YYY"), false},
		{"no from", nil, loc("KRA"), true},
		{"nothing", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &api.Traveller{From: tt.from, Via: tt.via}
			assert.Equal(t, tt.want, ix.VisaRequired(tr))
		})
	}
}

func TestVisaStillValid(t *testing.T) {
	ix := testIndex()

	tests := []struct {
		name string
		visa *api.Visa
		want bool
	}{
		{"no visa", nil, false},
		{"recent", &api.Visa{Date: "2014-06-01", Code: "AAAAA-BBBBB"}, true},
		{"day after cutoff", &api.Visa{Date: "2013-01-02", Code: "AAAAA-BBBBB"}, true},
		{"cutoff day", &api.Visa{Date: "2013-01-01", Code: "AAAAA-BBBBB"}, false},
		{"expired", &api.Visa{Date: "2011-02-01", Code: "AAAAA-BBBBB"}, false},
		{"malformed date", &api.Visa{Date: "01-06-2014", Code: "AAAAA-BBBBB"}, false},
		{"empty date", &api.Visa{Date: "", Code: "AAAAA-BBBBB"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &api.Traveller{Visa: tt.visa}
			assert.Equal(t, tt.want, ix.VisaStillValid(tr, testNow))
		})
	}
}

func TestVisaStillValid_CustomWindow(t *testing.T) {
	ix := testIndex(WithVisaValidity(30 * 24 * time.Hour))
	tr := &api.Traveller{Visa: &api.Visa{Date: "2014-06-01"}}
	assert.False(t, ix.VisaStillValid(tr, testNow))

	tr.Visa.Date = "2014-12-20"
	assert.True(t, ix.VisaStillValid(tr, testNow))
}

func TestWatchlistMatch(t *testing.T) {
	ix := testIndex()

	tests := []struct {
		name  string
		first string
		last  string
		pass  string
		want  bool
	}{
		{"passport exact", "Tom", "Baker", "JO4SI-8KLZU-CAZ9O-4PRMF-KSR1N", true},
		{"passport lowercase", "Tom", "Baker", "jo4si-8klzu-caz9o-4prmf-ksr1n", true},
		{"passport only entry", "Tom", "Baker", "qz7yt-4b2lm-8hke0-w2d9p-6nvt1", true},
		{"full name", "gerald", "MULRONEY", "AAAAA-BBBBB-CCCCC-DDDDD-EEEEE", true},
		{"name only entry", "Wanda", "Bravo", "AAAAA-BBBBB-CCCCC-DDDDD-EEEEE", true},
		{"first name only", "Gerald", "Baker", "AAAAA-BBBBB-CCCCC-DDDDD-EEEEE", false},
		{"names across entries", "Gerald", "Bravo", "AAAAA-BBBBB-CCCCC-DDDDD-EEEEE", false},
		{"no match", "Tom", "Baker", "AAAAA-BBBBB-CCCCC-DDDDD-EEEEE", false},
		{"empty passport does not match empty keys", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &api.Traveller{FirstName: tt.first, LastName: tt.last, Passport: tt.pass}
			assert.Equal(t, tt.want, ix.WatchlistMatch(tr))
		})
	}
}

func TestIsReturningCitizen(t *testing.T) {
	ix := testIndex()

	assert.True(t, ix.IsReturningCitizen(&api.Traveller{Home: loc("KAN"), EntryReason: "returning"}))
	assert.True(t, ix.IsReturningCitizen(&api.Traveller{Home: loc("kan"), EntryReason: "RETURNING"}))
	assert.False(t, ix.IsReturningCitizen(&api.Traveller{Home: loc("HGR"), EntryReason: "returning"}))
	assert.False(t, ix.IsReturningCitizen(&api.Traveller{Home: loc("KAN"), EntryReason: "visit"}))
	assert.False(t, ix.IsReturningCitizen(&api.Traveller{EntryReason: "returning"}))
}

func TestIsReturningCitizen_CustomHomeNation(t *testing.T) {
	ix := testIndex(WithHomeNation("HGR"))
	assert.Equal(t, "HGR", ix.HomeNation())
	assert.True(t, ix.IsReturningCitizen(&api.Traveller{Home: loc("HGR"), EntryReason: "returning"}))
	assert.False(t, ix.IsReturningCitizen(&api.Traveller{Home: loc("KAN"), EntryReason: "returning"}))
}

func TestNewIndex_DoesNotMutateInputs(t *testing.T) {
	countries := testCountries()
	watchlist := testWatchlist()
	NewIndex(countries, watchlist)
	assert.Equal(t, testCountries(), countries)
	assert.Equal(t, testWatchlist(), watchlist)
}
