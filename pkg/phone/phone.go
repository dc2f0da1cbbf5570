package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country code.
const DefaultRegion = "CO"

var ErrInvalid = errors.New("invalid phone number")

// Normalize parses raw in DefaultRegion and returns it in E.164 form.
func Normalize(raw string) (string, error) {
	return NormalizeIn(raw, DefaultRegion)
}

// NormalizeIn parses raw relative to region and returns it in E.164 form.
func NormalizeIn(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalid
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
