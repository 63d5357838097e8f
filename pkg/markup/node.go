// Package markup provides a tolerant HTML fragment parser and its
// inverse renderer. The node tree it produces is the raw material for
// block classification; it carries no block semantics of its own.
package markup

import "strings"

type NodeType int

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	FragmentNode
)

// Attribute is a single key-value pair. Attributes are kept as an
// ordered slice, not a map, so that untouched regions re-serialize
// with their original attribute order.
type Attribute struct {
	Key   string
	Value string
}

// Node is a single node of a parsed markup fragment. A Node is
// immutable by convention once it has been handed out by Parse;
// builders constructing render output own their nodes and may
// append children freely.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attribute
	Text     string
	Children []*Node
}

// Element returns a new element node with the given tag and attributes.
func Element(tag string, attrs ...Attribute) *Node {
	return &Node{Type: ElementNode, Tag: tag, Attrs: attrs}
}

// Text returns a new text node holding s verbatim.
func Text(s string) *Node {
	return &Node{Type: TextNode, Text: s}
}

// Comment returns a new comment node.
func Comment(s string) *Node {
	return &Node{Type: CommentNode, Text: s}
}

// Fragment returns a new fragment node wrapping the given children.
// Parse always returns a fragment root.
func Fragment(children ...*Node) *Node {
	return &Node{Type: FragmentNode, Children: children}
}

// Append adds children to the node and returns the node itself.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Attr returns the value of the attribute with the given key and
// whether it is present.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// HasClass reports whether the node's class attribute contains name.
func (n *Node) HasClass(name string) bool {
	classes, ok := n.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(classes) {
		if c == name {
			return true
		}
	}
	return false
}

// InnerText returns the concatenated text content of the subtree in
// document order.
func (n *Node) InnerText() string {
	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder) {
	if n.Type == TextNode {
		sb.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.collectText(sb)
	}
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	clone := n.CloneShallow()
	for _, c := range n.Children {
		clone.Children = append(clone.Children, c.Clone())
	}
	return clone
}

// CloneShallow returns a copy of n without its children. The attribute
// slice is copied so the clone can be extended independently.
func (n *Node) CloneShallow() *Node {
	clone := &Node{
		Type: n.Type,
		Tag:  n.Tag,
		Text: n.Text,
	}
	if len(n.Attrs) > 0 {
		clone.Attrs = make([]Attribute, len(n.Attrs))
		copy(clone.Attrs, n.Attrs)
	}
	return clone
}
