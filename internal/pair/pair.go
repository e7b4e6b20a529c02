// Package pair handles canonical currency-pair keys of the form "FROM_TO",
// e.g. "BTC_USD": value of one unit of FROM expressed in TO.
package pair

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimeLayout is the on-disk timestamp format: ISO-8601 UTC, second precision.
const TimeLayout = "2006-01-02T15:04:05Z"

var codePattern = regexp.MustCompile(`^[A-Z]{2,5}$`)

// ValidationError reports a malformed currency code or pair key.
type ValidationError struct {
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %q: %s", e.Value, e.Reason)
}

// ValidateCode checks a currency code: uppercase letters only, length 2-5.
func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return &ValidationError{Value: code, Reason: "currency code must be 2-5 uppercase letters"}
	}
	return nil
}

// Normalize trims and uppercases a user-supplied currency code and validates it.
func Normalize(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if err := ValidateCode(c); err != nil {
		return "", err
	}
	return c, nil
}

// Key renders the canonical pair key for (from, to).
func Key(from, to string) string {
	return from + "_" + to
}

// Parse splits a pair key into its FROM and TO currency codes.
func Parse(key string) (from, to string, err error) {
	parts := strings.Split(key, "_")
	if len(parts) != 2 {
		return "", "", &ValidationError{Value: key, Reason: "pair key must be FROM_TO"}
	}
	from, to = parts[0], parts[1]
	if err := ValidateCode(from); err != nil {
		return "", "", err
	}
	if err := ValidateCode(to); err != nil {
		return "", "", err
	}
	return from, to, nil
}

// From returns the FROM side of a pair key.
func From(key string) (string, error) {
	from, _, err := Parse(key)
	return from, err
}

// RecordID builds the history record identifier {FROM}_{TO}_{timestamp}.
func RecordID(from, to string, at time.Time) (string, error) {
	if err := ValidateCode(from); err != nil {
		return "", err
	}
	if err := ValidateCode(to); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s", from, to, at.UTC().Format(TimeLayout)), nil
}
