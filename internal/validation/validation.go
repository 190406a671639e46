package validation

import (
	"net/mail"
	"net/url"
	"strings"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
)

// Field length limits.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 5000
	MaxURLsPerItem       = 20
	MinPasswordLength    = 8
)

// NormalizeEmail trims and lowercases an email so share lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that the string is a bare address such as "a@example.com".
func ValidateEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && addr.Name == ""
}

// NormalizeEmails normalizes, validates and deduplicates a recipient list,
// preserving first-seen order. The second return value holds the invalid inputs.
func NormalizeEmails(emails []string) (valid []string, invalid []string) {
	seen := make(map[string]bool, len(emails))
	for _, raw := range emails {
		email := NormalizeEmail(raw)
		if !ValidateEmail(email) {
			invalid = append(invalid, raw)
			continue
		}
		if seen[email] {
			continue
		}
		seen[email] = true
		valid = append(valid, email)
	}
	return valid, invalid
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateURLs validates every URL in the slice and returns the first failure message.
func ValidateURLs(urls []string) (bool, string) {
	if len(urls) > MaxURLsPerItem {
		return false, "too many URLs"
	}
	for _, u := range urls {
		if valid, msg := ValidateURL(u); !valid {
			return false, msg + ": " + u
		}
	}
	return true, ""
}

// ValidateImportance reports whether importance is within the allowed range.
func ValidateImportance(importance int) bool {
	return importance >= models.MinImportance && importance <= models.MaxImportance
}

// ValidateCost reports whether an estimated cost is acceptable.
func ValidateCost(cost float64) bool {
	return cost >= 0 && cost < 1e12
}

// ValidateName checks a required, bounded name field.
func ValidateName(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, "name is required"
	}
	if len(name) > MaxNameLength {
		return false, "name is too long"
	}
	return true, ""
}

// ValidatePassword checks the minimum password requirements.
func ValidatePassword(password string) bool {
	return len(password) >= MinPasswordLength
}
