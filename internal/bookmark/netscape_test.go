package bookmark

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const chromeExport = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file. -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3 ADD_DATE="1600000000" LAST_MODIFIED="1600000001">Folder A</H3>
    <DL><p>
        <DT><A HREF="https://one.example.com/" ADD_DATE="1600000000" ICON="data:image/png;base64,AAAA">link1</A>
        <DT><H3>Folder B</H3>
        <DL><p>
            <DT><A HREF="https://two.example.com/">link2</A>
        </DL><p>
    </DL><p>
    <DT><A HREF="https://three.example.com/">link3</A>
</DL><p>
`

// stripUnknown drops *Unknown nodes so assertions only see bookmark entries.
func stripUnknown(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *Unknown:
			continue
		case *Folder:
			out = append(out, &Folder{Name: v.Name, Children: stripUnknown(v.Children)})
		default:
			out = append(out, n)
		}
	}
	return out
}

func TestParseNetscape_ChromeLayout(t *testing.T) {
	nodes, err := ParseNetscape(strings.NewReader(chromeExport))
	require.NoError(t, err)

	got := stripUnknown(nodes)
	require.Len(t, got, 2)

	folderA, ok := got[0].(*Folder)
	require.True(t, ok, "first entry should be a folder, got %T", got[0])
	require.Equal(t, "Folder A", folderA.Name)
	require.Len(t, folderA.Children, 2)

	link1, ok := folderA.Children[0].(*Link)
	require.True(t, ok)
	require.Equal(t, "https://one.example.com/", link1.URL)
	require.Equal(t, "link1", link1.Name)
	require.Equal(t, "1600000000", link1.AddDate)
	require.Equal(t, "data:image/png;base64,AAAA", link1.Icon)

	folderB, ok := folderA.Children[1].(*Folder)
	require.True(t, ok)
	require.Equal(t, "Folder B", folderB.Name)
	require.Len(t, folderB.Children, 1)
	require.Equal(t, "https://two.example.com/", folderB.Children[0].(*Link).URL)

	link3, ok := got[1].(*Link)
	require.True(t, ok)
	require.Equal(t, "link3", link3.Name)

	folders, links := Count(nodes)
	require.Equal(t, 2, folders)
	require.Equal(t, 3, links)
}

func TestParseNetscape_SiblingList(t *testing.T) {
	doc := `<DL>` +
		`<DT><H3>Folder A</H3></DT>` +
		`<DL><DT><A HREF="https://x.example.com/">x</A></DT></DL>` +
		`<DT><A HREF="https://y.example.com/">y</A></DT>` +
		`</DL>`

	nodes, err := ParseNetscape(strings.NewReader(doc))
	require.NoError(t, err)

	got := stripUnknown(nodes)
	require.Len(t, got, 2, "sibling list must not be walked twice")

	folder, ok := got[0].(*Folder)
	require.True(t, ok)
	require.Equal(t, "Folder A", folder.Name)
	require.Len(t, folder.Children, 1)
	require.Equal(t, "x", folder.Children[0].(*Link).Name)

	require.Equal(t, "y", got[1].(*Link).Name)
}

func TestParseNetscape_EmptyFolder(t *testing.T) {
	doc := `<DL>` +
		`<DT><H3>Empty</H3></DT>` +
		`<DT><A HREF="https://z.example.com/">z</A></DT>` +
		`</DL>`

	nodes, err := ParseNetscape(strings.NewReader(doc))
	require.NoError(t, err)

	got := stripUnknown(nodes)
	require.Len(t, got, 2)
	require.Equal(t, "Empty", got[0].(*Folder).Name)
	require.Empty(t, got[0].(*Folder).Children)
	require.Equal(t, "z", got[1].(*Link).Name)
}

func TestParseNetscape_NoList(t *testing.T) {
	_, err := ParseNetscape(strings.NewReader(`<html><body><p>nothing here</p></body></html>`))
	if !errors.Is(err, ErrNoBookmarkList) {
		t.Fatalf("ParseNetscape() error = %v, want ErrNoBookmarkList", err)
	}
}

// el builds an element node by hand, for layouts the HTML5 parser never emits.
func el(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func TestParseNetscape_NestedTermArtifact(t *testing.T) {
	href := func(u string) []html.Attribute { return []html.Attribute{{Key: "href", Val: u}} }

	dl := el(atom.Dl, nil,
		el(atom.Dt, nil,
			el(atom.Dt, nil,
				el(atom.H3, nil, text("Sub")),
				el(atom.Dl, nil,
					el(atom.Dt, nil, el(atom.A, href("https://sub.example.com/"), text("in sub"))),
				),
			),
			text("\n"),
			el(atom.Dt, nil, el(atom.A, href("https://flat.example.com/"), text("flat"))),
		),
	)

	p := &netscapeParser{consumed: make(map[*html.Node]bool)}
	nodes := p.list(goquery.NewDocumentFromNode(dl).Selection)

	require.Len(t, nodes, 2)

	sub, ok := nodes[0].(*Folder)
	require.True(t, ok, "nested term with a header is a folder")
	require.Equal(t, "Sub", sub.Name)
	require.Len(t, sub.Children, 1)
	require.Equal(t, "in sub", sub.Children[0].(*Link).Name)

	flat, ok := nodes[1].(*Link)
	require.True(t, ok, "nested term without a header continues the current folder")
	require.Equal(t, "flat", flat.Name)
}

func TestParseNetscape_FolderDescription(t *testing.T) {
	doc := `<DL><p>
    <DT><H3>Work</H3>
    <DD>Things for the office
    <DL><p>
        <DT><A HREF="https://w1.example.com/">w1</A>
        <DT><A HREF="https://w2.example.com/">w2</A>
    </DL><p>
    <DT><H3>Closed</H3>
    <DD>Description closed explicitly</DD>
    <DL><p>
        <DT><A HREF="https://c.example.com/">c</A>
    </DL><p>
    <DT><A HREF="https://after.example.com/">after</A>
</DL><p>`

	nodes, err := ParseNetscape(strings.NewReader(doc))
	require.NoError(t, err)

	folders, links := Count(nodes)
	require.Equal(t, 2, folders)
	require.Equal(t, 4, links)

	got := stripUnknown(nodes)
	require.Len(t, got, 3)

	work := got[0].(*Folder)
	require.Equal(t, "Work", work.Name)
	require.Len(t, work.Children, 2)
	require.Equal(t, "w2", work.Children[1].(*Link).Name)

	closed := got[1].(*Folder)
	require.Equal(t, "Closed", closed.Name)
	require.Len(t, closed.Children, 1)

	require.Equal(t, "after", got[2].(*Link).Name)
}
