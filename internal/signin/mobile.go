package signin

import (
	"net/url"
	"strings"
)

const (
	MobileNumberLength = 10
	OTPLength          = 6
)

// SanitizeMobileInput keeps only ASCII digits and truncates to ten of them.
func SanitizeMobileInput(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == MobileNumberLength {
				break
			}
		}
	}
	return b.String()
}

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateMobileNumber reports whether s is exactly ten digits.
func ValidateMobileNumber(s string) bool { return allDigits(s, MobileNumberLength) }

// ValidateOTP reports whether s is exactly six digits.
func ValidateOTP(s string) bool { return allDigits(s, OTPLength) }

// FormatMobileNumber splits a number after its fifth digit: "98765 43210".
func FormatMobileNumber(s string) string {
	if len(s) <= 5 {
		return s
	}
	return s[:5] + " " + s[5:]
}

// maskMobile keeps the last four digits for logs.
func maskMobile(full string) string {
	if len(full) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(full)-4) + full[len(full)-4:]
}

// SafeCallbackURL returns raw when it is a same-site relative path, otherwise "/".
func SafeCallbackURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return raw
}
