// Package security redacts credentials from text before it is persisted.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// SecretPattern represents a pattern for detecting secrets. When the
// pattern has a capture group only the group is redacted.
type SecretPattern struct {
	Name     string
	Pattern  *regexp.Regexp
	Category string
}

// SecretDetector handles detection and redaction of secrets
type SecretDetector struct {
	patterns []SecretPattern
}

// NewSecretDetector creates a detector for the credentials that show up in
// coding conversations: key assignments, provider tokens, private keys and
// URLs with embedded passwords.
func NewSecretDetector() *SecretDetector {
	sd := &SecretDetector{}

	// Assignments such as OPENAI_API_KEY=... or "clientSecret": "..."
	sd.addPattern("API Key", `(?i)api[_-]?key[s]?["']?[\s]*[:=][\s]*["']?([a-zA-Z0-9_\-]{20,})["']?`, "api")
	sd.addPattern("Secret Key", `(?i)secret[_-]?key[s]?["']?[\s]*[:=][\s]*["']?([a-zA-Z0-9_\-]{20,})["']?`, "api")
	sd.addPattern("Access Token", `(?i)access[_-]?token[s]?["']?[\s]*[:=][\s]*["']?([a-zA-Z0-9_\-]{20,})["']?`, "api")
	sd.addPattern("Client Secret", `(?i)client[_-]?secret["']?[\s]*[:=][\s]*["']?([a-zA-Z0-9_\-]{20,})["']?`, "oauth")
	sd.addPattern("Bearer Token", `Bearer\s+([a-zA-Z0-9\-_\.]{20,})`, "api")
	sd.addPattern("JWT Token", `eyJ[a-zA-Z0-9\-_]{20,}\.eyJ[a-zA-Z0-9\-_]{20,}\.[a-zA-Z0-9\-_]{20,}`, "api")

	// Provider tokens
	sd.addPattern("OpenAI Key", `sk-(?:proj-)?[A-Za-z0-9_\-]{20,}`, "api")
	sd.addPattern("AWS Access Key", `AKIA[0-9A-Z]{16}`, "cloud")
	sd.addPattern("Google API Key", `AIza[0-9A-Za-z\-_]{35}`, "cloud")
	sd.addPattern("GitHub Token", `gh[pousr]_[a-zA-Z0-9]{36}`, "oauth")
	sd.addPattern("GitLab Token", `glpat-[a-zA-Z0-9\-_]{20}`, "oauth")
	sd.addPattern("Slack Token", `xox[baprs]-[0-9a-zA-Z\-]{10,}`, "oauth")
	sd.addPattern("Stripe Key", `(?:r|s)k_live_[0-9a-zA-Z]{24}`, "payment")

	sd.addPattern("Private Key", `-----BEGIN [A-Z ]*PRIVATE KEY-----`, "crypto")

	// Passwords inside connection strings and URLs
	sd.addPattern("URL with Credentials", `(?i)(?:mongodb(?:\+srv)?|postgres(?:ql)?|mysql|redis|amqp|https?|ftp)://[^:@/\s]+:([^@\s]+)@`, "url")

	return sd
}

// addPattern adds a new secret detection pattern
func (sd *SecretDetector) addPattern(name, pattern, category string) {
	sd.patterns = append(sd.patterns, SecretPattern{
		Name:     name,
		Pattern:  regexp.MustCompile(pattern),
		Category: category,
	})
}

// Redact replaces every detected secret with a [REDACTED_<CATEGORY>] marker
// and returns the new content with the number of redactions.
func (sd *SecretDetector) Redact(content string) (string, int) {
	count := 0
	for _, pattern := range sd.patterns {
		marker := fmt.Sprintf("[REDACTED_%s]", strings.ToUpper(pattern.Category))
		content = pattern.Pattern.ReplaceAllStringFunc(content, func(match string) string {
			sub := pattern.Pattern.FindStringSubmatch(match)
			count++
			if len(sub) > 1 && sub[1] != "" {
				return strings.Replace(match, sub[1], marker, 1)
			}
			return marker
		})
	}
	return content, count
}

// Patterns returns the pattern names, for diagnostics.
func (sd *SecretDetector) Patterns() []string {
	names := make([]string, len(sd.patterns))
	for i, p := range sd.patterns {
		names[i] = p.Name
	}
	return names
}
