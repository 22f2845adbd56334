package utils

import "strings"

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// TruncateString truncates string to max length.
func (s *StringHelper) TruncateString(str string, maxLength int) string {
	if len(str) <= maxLength {
		return str
	}

	return str[:maxLength] + "..."
}

// Mask hides a secret, keeping only its last four characters.
func (s *StringHelper) Mask(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) <= 4 {
		return "***"
	}

	return "***" + secret[len(secret)-4:]
}

// SplitBefore returns the part of str before the first occurrence of any of seps.
func (s *StringHelper) SplitBefore(str string, seps ...string) string {
	cut := len(str)
	for _, sep := range seps {
		if i := strings.Index(str, sep); i >= 0 && i < cut {
			cut = i
		}
	}

	return str[:cut]
}
