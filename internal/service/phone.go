package service

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// PhoneFormatter renders stored phone numbers in international format.
type PhoneFormatter struct {
	region string
}

// NewPhoneFormatter parses numbers without a country code as belonging to region (ISO 3166 alpha-2).
func NewPhoneFormatter(region string) *PhoneFormatter {
	return &PhoneFormatter{region: strings.ToUpper(region)}
}

// Format returns the international form of input, or the trimmed input when it cannot be parsed.
func (f *PhoneFormatter) Format(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, f.region)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}
