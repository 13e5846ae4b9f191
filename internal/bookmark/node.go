// Package bookmark turns browser bookmark exports into a normalized tree.
//
// Parsing is a pure pre-pass: it never touches storage. The importer walks
// the resulting []Node to create categories and links.
package bookmark

// Node is one entry of a normalized bookmark tree: *Folder, *Link or *Unknown.
type Node interface {
	node()
}

// Folder is a named container. Name is the raw header text, trimmed.
type Folder struct {
	Name     string
	Children []Node
}

// Link is a single bookmark.
type Link struct {
	URL  string
	Name string

	// AddDate is the raw ADD_DATE attribute (Unix seconds), possibly empty or non-numeric.
	AddDate string

	// Icon is the raw ICON attribute, usually a data:image/...;base64 URL.
	Icon string
}

// Unknown marks markup that carries no bookmark meaning. Walkers ignore it.
type Unknown struct {
	Tag string
}

func (*Folder) node()  {}
func (*Link) node()    {}
func (*Unknown) node() {}

// Count returns the number of folders and links in nodes, recursively.
func Count(nodes []Node) (folders, links int) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Folder:
			folders++
			f, l := Count(v.Children)
			folders += f
			links += l
		case *Link:
			links++
		}
	}
	return folders, links
}
