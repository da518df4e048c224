package logging

import (
	"net/url"
	"regexp"
	"strings"
)

// Query parameters that carry credentials in attachment URLs. Chat gateways
// hand out signed download links; those signatures must not end up in logs.
var sensitiveParams = []string{
	"token",
	"signature",
	"sig",
	"x-amz-signature",
	"x-amz-credential",
	"x-goog-signature",
	"api_key",
	"apikey",
	"auth",
	"access_key",
}

// Patterns for secrets that can appear in free-form strings.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+([a-zA-Z0-9._-]{20,})`),
	regexp.MustCompile(`(?i)(key|token|secret|password|auth)[=:]["']?([a-zA-Z0-9+/=_-]{32,})["']?`),
}

// RedactedValue is the replacement for sensitive values.
const RedactedValue = "[REDACTED]"

// Redact replaces sensitive information in a string. URLs keep their host
// and path but lose credential-bearing query parameters and userinfo.
func Redact(s string) string {
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		return redactURL(u)
	}

	result := s
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

func redactURL(u *url.URL) string {
	if u.User != nil {
		u.User = url.User(RedactedValue)
	}
	query := u.Query()
	changed := false
	for key := range query {
		if isSensitiveParam(key) {
			query.Set(key, RedactedValue)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func isSensitiveParam(name string) bool {
	lower := strings.ToLower(name)
	for _, param := range sensitiveParams {
		if lower == param || strings.HasSuffix(lower, "_"+param) {
			return true
		}
	}
	return false
}
