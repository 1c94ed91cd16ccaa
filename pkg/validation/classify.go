package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"inquiry-backend/internal/domain"
)

const (
	maxEmailLocalLen  = 64
	maxEmailDomainLen = 253
)

var (
	// local part: dot-separated atoms or a quoted string; domain: dotted labels with an
	// alphabetic TLD, or a bracketed IPv4 literal. Whitespace includes Unicode spaces and BOM.
	emailRegex = regexp.MustCompile(
		`^(?:[^<>()\[\]\\.,;:\s\p{Z}\x{FEFF}@"]+(?:\.[^<>()\[\]\\.,;:\s\p{Z}\x{FEFF}@"]+)*|".+")` +
			`@(?:\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\]|(?:[a-z0-9-]+\.)+[a-z]{2,})$`)

	internationalPhoneRegex = regexp.MustCompile(`^\+[1-9][0-9]{8,14}$`)
	localPhoneRegex         = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// ClassifyEmail reports whether s is a well-formed email address
func ClassifyEmail(s string) domain.Outcome {
	if !emailRegex.MatchString(strings.ToLower(s)) {
		return domain.OutcomeInvalidFormat
	}

	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return domain.OutcomeInvalidFormat
	}
	local, host := parts[0], parts[1]

	if utf8.RuneCountInString(local) > maxEmailLocalLen || utf8.RuneCountInString(host) > maxEmailDomainLen {
		return domain.OutcomeInvalidFormat
	}
	if strings.Contains(s, "..") {
		return domain.OutcomeInvalidFormat
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return domain.OutcomeInvalidFormat
	}

	return domain.OutcomeOK
}

// ClassifyPhone reports whether s is a plausible phone number, local (10-15 digits)
// or international (+ and a non-zero country digit followed by 8-14 digits).
// Whitespace, hyphens and parentheses are ignored.
func ClassifyPhone(s string) domain.Outcome {
	clean := stripPhoneSeparators(s)
	if strings.HasPrefix(clean, "+") {
		if internationalPhoneRegex.MatchString(clean) {
			return domain.OutcomeOK
		}
		return domain.OutcomeInvalidFormat
	}
	if localPhoneRegex.MatchString(clean) {
		return domain.OutcomeOK
	}
	return domain.OutcomeInvalidFormat
}

// IsEmail is ClassifyEmail as a predicate
func IsEmail(s string) bool {
	return ClassifyEmail(s) == domain.OutcomeOK
}

// IsPhone is ClassifyPhone as a predicate
func IsPhone(s string) bool {
	return ClassifyPhone(s) == domain.OutcomeOK
}

func stripPhoneSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, s)
}

// FormatPhone reformats phone input the way the contact page does while typing:
// international numbers are left alone, anything else is reduced to digits and a
// Vietnamese number of ten or more digits starting with 0 is grouped as 0XXX XXX XXX.
func FormatPhone(s string) string {
	if strings.HasPrefix(s, "+") {
		return s
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) >= 10 && digits[0] == '0' {
		return digits[:4] + " " + digits[4:7] + " " + digits[7:10] + digits[10:]
	}
	return digits
}
