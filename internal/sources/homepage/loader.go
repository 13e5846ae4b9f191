// Package homepage reads bookmarks.yaml files from the Homepage dashboard
// (gethomepage.dev) and maps them onto the bookmark tree.
package homepage

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/adlinkton/internal/bookmark"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Load decodes a bookmarks.yaml document.
func Load(r io.Reader) (BookmarksConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks file: %w", err)
	}

	// Homepage substitutes {{HOMEPAGE_VAR_...}} at runtime; they carry nothing we can import.
	data = templateVar.ReplaceAll(data, []byte(`""`))

	var config BookmarksConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks yaml: %w", err)
	}

	return config, nil
}

// ParseBookmarks loads r and returns one folder per Homepage group.
func ParseBookmarks(r io.Reader) ([]bookmark.Node, error) {
	config, err := Load(r)
	if err != nil {
		return nil, err
	}
	nodes := MapBookmarks(config)
	if len(nodes) == 0 {
		return nil, bookmark.ErrNoBookmarkList
	}
	return nodes, nil
}
