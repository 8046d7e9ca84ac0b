// Package document checks the structure of traveller records and the
// documents they carry.
package document

import (
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tkingovr/borderguard/api"
)

// DateLayout is the layout of visa issue dates.
const DateLayout = "2006-01-02"

var (
	passportPattern = regexp.MustCompile(`^.{5}-.{5}-.{5}-.{5}-.{5}$`)
	visaPattern     = regexp.MustCompile(`^.{5}-.{5}$`)
	datePattern     = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

// PassportFormatValid reports whether passport is five groups of five
// characters separated by hyphens.
func PassportFormatValid(passport string) bool {
	return passportPattern.MatchString(passport)
}

// VisaFormatValid reports whether the traveller's visa code is two groups of
// five characters separated by a hyphen. A traveller without a visa passes.
func VisaFormatValid(t *api.Traveller) bool {
	if t.Visa == nil {
		return true
	}
	return visaPattern.MatchString(t.Visa.Code)
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return time.Parse(DateLayout, s)
}

// RequiredFieldsPresent reports whether every required field of t is present
// and non-empty.
func RequiredFieldsPresent(t *api.Traveller) bool {
	return validate.Struct(t) == nil
}

// MissingFields returns the dotted JSON names of the required fields that are
// absent or empty, in declaration order.
func MissingFields(t *api.Traveller) []string {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldPath(fe.Namespace()))
	}
	return fields
}
