package domain

import "errors"

var (
	// ErrInvalidURL is returned for URLs that are not absolute or exceed MaxURLLength.
	ErrInvalidURL = errors.New("invalid url")
	// ErrDuplicateLink is returned when the user already owns a link with the same URL.
	ErrDuplicateLink = errors.New("duplicate link")
	// ErrEmptyName is returned for entries without a usable name or href.
	ErrEmptyName = errors.New("empty name")
)

// IsEntryError reports whether err only concerns a single imported entry
// and must not abort the surrounding import.
func IsEntryError(err error) bool {
	return errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrDuplicateLink) ||
		errors.Is(err, ErrEmptyName)
}
