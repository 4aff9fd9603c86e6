// Package security masks credentials before they reach logs or output.
package security

import (
	"regexp"
	"strings"
)

// secretPatterns match credentials embedded in free text.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|secret|access[_-]?token|bearer|password)([=:\s]+["']?)([^\s"',]+)`),
	regexp.MustCompile(`\b(gsk_[A-Za-z0-9]{16,})`), // Groq keys
	regexp.MustCompile(`\b(sk-[A-Za-z0-9_-]{16,})`), // OpenAI keys
}

// MaskCredential keeps the first and last four characters of long values and
// stars the rest.
func MaskCredential(value string) string {
	switch {
	case value == "":
		return ""
	case len(value) <= 4:
		return strings.Repeat("*", len(value))
	case len(value) <= 8:
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// MaskSecrets masks every credential-looking substring of s.
func MaskSecrets(s string) string {
	s = secretPatterns[0].ReplaceAllStringFunc(s, func(match string) string {
		m := secretPatterns[0].FindStringSubmatch(match)
		return m[1] + m[2] + MaskCredential(m[3])
	})
	for _, p := range secretPatterns[1:] {
		s = p.ReplaceAllStringFunc(s, MaskCredential)
	}
	return s
}
