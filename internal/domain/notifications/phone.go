package notifications

import "strings"

const countryCode = "55"

// NormalizePhone strips everything but digits and prepends the Brazilian
// country code when it is not already present. Messaging relays require the
// full international form.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return digits
}
