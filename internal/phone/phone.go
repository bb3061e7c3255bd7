// Package phone canonicalizes phone numbers to E.164 for storage and deduplication.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalize parses raw and returns its E.164 form. ok is false when the input
// is blank, unparsable, or not a valid number. defaultRegion (e.g. "US", "IT")
// is used only when the input carries no country code; pass "" to require one.
func Normalize(raw, defaultRegion string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	parsed, err := phonenumbers.Parse(trimmed, strings.ToUpper(strings.TrimSpace(defaultRegion)))
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", false
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), true
}
