package homepage

import (
	"testing"

	"github.com/MrSnakeDoc/adlinkton/internal/bookmark"
)

func TestMapBookmarks(t *testing.T) {
	config := BookmarksConfig{
		{
			"Developer": {
				{"Github": {{Abbr: "GH", Href: " https://github.com/ "}}},
				{"Broken": {}},
				{"Inline": {{Href: "https://inline.example.com/", Icon: "data:image/png;base64,AAAA"}}},
				{"Asset": {{Href: "https://asset.example.com/", Icon: "asset.png"}}},
			},
		},
		{
			"Empty": {},
		},
	}

	nodes := MapBookmarks(config)
	if len(nodes) != 2 {
		t.Fatalf("MapBookmarks() returned %d nodes, want 2", len(nodes))
	}

	dev, ok := nodes[0].(*bookmark.Folder)
	if !ok || dev.Name != "Developer" {
		t.Fatalf("first node = %#v, want Developer folder", nodes[0])
	}
	if len(dev.Children) != 3 {
		t.Fatalf("Developer has %d links, want 3 (entry-less item dropped)", len(dev.Children))
	}

	gh := dev.Children[0].(*bookmark.Link)
	if gh.URL != "https://github.com/" || gh.Name != "Github" {
		t.Errorf("github link = %+v", gh)
	}
	if icon := dev.Children[1].(*bookmark.Link).Icon; icon != "data:image/png;base64,AAAA" {
		t.Errorf("inline icon = %q, want data url kept", icon)
	}
	if icon := dev.Children[2].(*bookmark.Link).Icon; icon != "" {
		t.Errorf("asset icon = %q, want dropped", icon)
	}

	empty := nodes[1].(*bookmark.Folder)
	if empty.Name != "Empty" || len(empty.Children) != 0 {
		t.Errorf("empty folder = %+v", empty)
	}
}
