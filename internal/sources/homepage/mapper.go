package homepage

import (
	"sort"
	"strings"

	"github.com/MrSnakeDoc/adlinkton/internal/bookmark"
)

// MapBookmarks converts a Homepage config to folders of links, keeping
// document order. Entries without href are kept so the importer can count
// them as skipped.
func MapBookmarks(config BookmarksConfig) []bookmark.Node {
	nodes := make([]bookmark.Node, 0, len(config))

	for _, group := range config {
		// A group item holds a single key; sort in case a file packs several.
		for _, groupName := range sortedKeys(group) {
			folder := &bookmark.Folder{Name: groupName}

			for _, item := range group[groupName] {
				for _, name := range sortedKeys(item) {
					entries := item[name]
					if len(entries) == 0 {
						continue
					}
					entry := entries[0]

					link := &bookmark.Link{
						URL:  strings.TrimSpace(entry.Href),
						Name: strings.TrimSpace(name),
					}
					// Homepage icons are usually names of bundled assets; only inline images are usable.
					if strings.HasPrefix(entry.Icon, "data:image/") {
						link.Icon = entry.Icon
					}
					folder.Children = append(folder.Children, link)
				}
			}

			nodes = append(nodes, folder)
		}
	}

	return nodes
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
