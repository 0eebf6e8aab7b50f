package utils

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// NormalizePhone parses a raw phone string and returns it in E.164 form.
// Numbers without a country code are assumed to be US.
func NormalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty phone number")
	}
	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("unparseable phone number %q: %w", raw, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsSMSCapable reports whether a number can receive text messages.
// Fixed-line numbers are excluded; US numbers usually come back as
// FIXED_LINE_OR_MOBILE, which counts as capable.
func IsSMSCapable(e164 string) bool {
	num, err := phonenumbers.Parse(e164, defaultRegion)
	if err != nil {
		return false
	}
	return phonenumbers.GetNumberType(num) != phonenumbers.FIXED_LINE
}
