package bookmark

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoBookmarkList is returned when a document holds no <DL> element.
var ErrNoBookmarkList = errors.New("no bookmarks found in file")

// netscapeParser tracks <DL> elements already consumed as a folder body so
// the enclosing list does not walk them a second time.
type netscapeParser struct {
	consumed map[*html.Node]bool
}

// ParseNetscape parses a Netscape bookmark export (Chrome, Firefox, Safari, Edge)
// and returns the entries of its first <DL> list in document order.
//
// Exports are not well-formed, so a folder's <DL> can end up as a child of its
// <DT>, as the next element sibling of that <DT>, or nowhere at all. All three
// layouts are accepted.
func ParseNetscape(r io.Reader) ([]Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bookmark html: %w", err)
	}

	root := doc.Find("dl").First()
	if root.Length() == 0 {
		return nil, ErrNoBookmarkList
	}

	p := &netscapeParser{consumed: make(map[*html.Node]bool)}
	return p.list(root), nil
}

// list converts the element children of a <DL>.
func (p *netscapeParser) list(dl *goquery.Selection) []Node {
	p.consumed[dl.Get(0)] = true

	var nodes []Node
	dl.Children().Each(func(_ int, child *goquery.Selection) {
		switch child.Get(0).DataAtom {
		case atom.Dt:
			nodes = append(nodes, p.term(child)...)
		case atom.Dl:
			// A stray list with no header of its own continues the current folder.
			if !p.consumed[child.Get(0)] {
				nodes = append(nodes, p.list(child)...)
			}
		default:
			nodes = append(nodes, &Unknown{Tag: goquery.NodeName(child)})
		}
	})
	return nodes
}

// term converts one <DT>. It usually yields a single folder or link, but
// parser artifacts (a <DT> nested in a <DT>) can yield several.
func (p *netscapeParser) term(dt *goquery.Selection) []Node {
	var nodes []Node
	dt.Children().Each(func(_ int, child *goquery.Selection) {
		switch child.Get(0).DataAtom {
		case atom.H3:
			nodes = append(nodes, p.folder(dt, child))
		case atom.A:
			nodes = append(nodes, link(child))
		case atom.Dt:
			// Nested <DT>: a folder if it has its own header, links of the
			// current folder otherwise. term handles both.
			nodes = append(nodes, p.term(child)...)
		case atom.Dl:
			if !p.consumed[child.Get(0)] {
				nodes = append(nodes, p.list(child)...)
			}
		}
	})
	return nodes
}

// folder builds the folder headed by h3, looking for its body first as a
// child <DL> of dt, then as the next element sibling of dt. A folder
// description (<DD>, Firefox) may sit in between and swallow the <DL>.
func (p *netscapeParser) folder(dt, h3 *goquery.Selection) Node {
	f := &Folder{Name: strings.TrimSpace(h3.Text())}

	if body := p.childList(dt); body != nil {
		f.Children = p.list(body)
		return f
	}

	next := dt.Next()
	if next.Length() > 0 && next.Get(0).DataAtom == atom.Dd {
		if body := p.childList(next); body != nil {
			f.Children = p.list(body)
			return f
		}
		next = next.Next()
	}
	if next.Length() > 0 && next.Get(0).DataAtom == atom.Dl && !p.consumed[next.Get(0)] {
		f.Children = p.list(next)
	}
	return f
}

// childList returns the first unconsumed <DL> child of parent, or nil.
func (p *netscapeParser) childList(parent *goquery.Selection) *goquery.Selection {
	var body *goquery.Selection
	parent.ChildrenFiltered("dl").EachWithBreak(func(_ int, dl *goquery.Selection) bool {
		if p.consumed[dl.Get(0)] {
			return true
		}
		body = dl
		return false
	})
	return body
}

func link(a *goquery.Selection) *Link {
	return &Link{
		URL:     strings.TrimSpace(a.AttrOr("href", "")),
		Name:    strings.TrimSpace(a.Text()),
		AddDate: strings.TrimSpace(a.AttrOr("add_date", "")),
		Icon:    strings.TrimSpace(a.AttrOr("icon", "")),
	}
}
