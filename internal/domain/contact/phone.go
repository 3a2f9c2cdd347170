package contact

import (
	"errors"
	"strings"
	"unicode"
)

// Egyptian mobile numbers are written locally as 01XXXXXXXXX.
const (
	EgyptianMobilePrefix = "01"
	EgyptianMobileLength = 11
	EgyptCountryCode     = "20"

	// MinInternationalDigits is the minimum digit count after a leading '+'.
	MinInternationalDigits = 10
)

// WhatsAppBaseURL is the deep-link prefix used to open a chat with a number.
const WhatsAppBaseURL = "https://wa.me/"

// Phone validation errors
var (
	ErrPhoneRequired         = errors.New("phone number is required")
	ErrInternationalTooShort = errors.New("international number must have at least 10 digits after +")
	ErrPhoneNotDigits        = errors.New("only digits allowed (or start with + for international)")
	ErrEgyptianPrefix        = errors.New("egyptian number must start with 01")
	ErrEgyptianLength        = errors.New("egyptian mobile number must be exactly 11 digits")
)

// ValidatePhone checks a phone number as typed by an administrator.
// PRE: none
// POST: Returns nil for a '+' number with at least 10 digits or a local
// 11-digit number starting with 01; otherwise a descriptive error
func ValidatePhone(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ErrPhoneRequired
	}

	if rest, ok := strings.CutPrefix(trimmed, "+"); ok {
		if len(digitsOnly(rest)) < MinInternationalDigits {
			return ErrInternationalTooShort
		}
		return nil
	}

	digits := digitsOnly(trimmed)
	if digits != trimmed {
		return ErrPhoneNotDigits
	}
	if !strings.HasPrefix(digits, EgyptianMobilePrefix) {
		return ErrEgyptianPrefix
	}
	if len(digits) != EgyptianMobileLength {
		return ErrEgyptianLength
	}
	return nil
}

// FormatEgyptianPhone converts a stored number into the country-coded digit
// string WhatsApp expects. It is only used to build links, never for storage.
// PRE: none
// POST: Returns digits only, always starting with the Egyptian country code
func FormatEgyptianPhone(raw string) string {
	cleaned := digitsOnly(raw)
	if rest, ok := strings.CutPrefix(cleaned, "0"); ok {
		cleaned = EgyptCountryCode + rest
	}
	if !strings.HasPrefix(cleaned, EgyptCountryCode) {
		cleaned = EgyptCountryCode + cleaned
	}
	return cleaned
}

// WhatsAppURL returns the wa.me chat link for a phone number.
func WhatsAppURL(raw string) string {
	return WhatsAppBaseURL + FormatEgyptianPhone(raw)
}

// digitsOnly strips every rune that is not an ASCII digit.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
