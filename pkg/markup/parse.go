package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses an HTML fragment into a node tree rooted at a fragment
// node. Malformed input is recovered rather than rejected: unclosed
// tags are closed, stray closing tags are dropped, and stray text is
// kept as text nodes. Fully unparseable input yields an empty fragment.
// Parse never fails for malformed markup.
//
// Whitespace-only text nodes are preserved verbatim so that regions
// untouched by edits re-serialize byte-faithfully.
func Parse(src string) *Node {
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}

	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	root := Fragment()
	if err != nil {
		return root
	}

	for _, n := range nodes {
		if c := fromHTML(n); c != nil {
			root.Children = append(root.Children, c)
		}
	}
	return root
}

// fromHTML converts a x/net/html node into a markup node. Nodes other
// than elements, text and comments (doctypes, documents) are dropped.
func fromHTML(n *html.Node) *Node {
	switch n.Type {
	case html.ElementNode:
		node := Element(n.Data)
		if len(n.Attr) > 0 {
			node.Attrs = make([]Attribute, 0, len(n.Attr))
			for _, a := range n.Attr {
				node.Attrs = append(node.Attrs, Attribute{Key: a.Key, Value: a.Val})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTML(c); child != nil {
				node.Children = append(node.Children, child)
			}
		}
		return node
	case html.TextNode:
		return Text(n.Data)
	case html.CommentNode:
		return Comment(n.Data)
	default:
		return nil
	}
}
