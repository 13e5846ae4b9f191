package domain

import (
	"fmt"
	"html"
	"net/url"
	"strings"
)

// MaxURLLength is the longest URL accepted for a link.
const MaxURLLength = 2048

// schemes that are valid without a host (mailto:me@example.com).
var hostlessSchemes = map[string]bool{
	"mailto": true,
	"news":   true,
	"file":   true,
}

// ValidateURL checks that raw is an absolute URL no longer than MaxURLLength.
// The returned string is the trimmed URL to store.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > MaxURLLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, truncate(raw, 64))
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, truncate(raw, 64))
	}

	scheme := strings.ToLower(u.Scheme)
	if u.Host == "" && !hostlessSchemes[scheme] {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, truncate(raw, 64))
	}

	return raw, nil
}

// SanitizeName trims s and escapes HTML special characters, quotes included.
func SanitizeName(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// Domain returns the lowercased host of raw without port, or "" if raw has none.
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
