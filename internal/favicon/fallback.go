package favicon

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"
)

const fallbackTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="32" height="32" viewBox="0 0 32 32">
  <rect width="32" height="32" fill="%s" rx="4"/>
  <text x="16" y="22" text-anchor="middle" fill="white" font-family="Arial, sans-serif" font-size="18" font-weight="bold">%s</text>
</svg>
`

// FallbackColor returns the background color of the generated icon for domain.
func FallbackColor(domain string) string {
	return "#" + Key(domain)[:6]
}

// FallbackSVG renders the letter icon used when no favicon could be fetched.
func FallbackSVG(domain string) []byte {
	letter := "?"
	if r, _ := utf8.DecodeRuneInString(domain); r != utf8.RuneError {
		letter = strings.ToUpper(string(r))
	}
	return []byte(fmt.Sprintf(fallbackTemplate, FallbackColor(domain), html.EscapeString(letter)))
}
