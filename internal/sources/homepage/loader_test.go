package homepage

import (
	"errors"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/adlinkton/internal/bookmark"
)

func TestLoad(t *testing.T) {
	yamlContent := `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Docker Hub:
        - abbr: DH
          href: https://hub.docker.com/
- Social:
    - Reddit:
        - icon: reddit.png
          href: https://reddit.com/
          description: The front page of the internet
`

	config, err := Load(strings.NewReader(yamlContent))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(config) != 2 {
		t.Fatalf("Load() returned %d groups, want 2", len(config))
	}

	social := config[1]["Social"]
	if len(social) != 1 {
		t.Fatalf("expected 1 bookmark in Social, got %d", len(social))
	}
	reddit := social[0]["Reddit"][0]
	if reddit.Description != "The front page of the internet" {
		t.Errorf("description = %q", reddit.Description)
	}
}

func TestLoadWithTemplateVariables(t *testing.T) {
	yamlContent := `---
- Private:
    - Grafana:
        - href: {{HOMEPAGE_VAR_GRAFANA_URL}}
`

	config, err := Load(strings.NewReader(yamlContent))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	href := config[0]["Private"][0]["Grafana"][0].Href
	if href != "" {
		t.Errorf("template variable should be stripped, got href %q", href)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	if _, err := Load(strings.NewReader("- [unclosed")); err == nil {
		t.Error("Load() with invalid yaml should return error")
	}
}

func TestParseBookmarksEmpty(t *testing.T) {
	_, err := ParseBookmarks(strings.NewReader("[]"))
	if !errors.Is(err, bookmark.ErrNoBookmarkList) {
		t.Fatalf("ParseBookmarks() error = %v, want ErrNoBookmarkList", err)
	}
}
