package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// voidElements have no closing tag and no children.
// https://html.spec.whatwg.org/multipage/syntax.html#void-elements
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {},
	"hr": {}, "img": {}, "input": {}, "link": {}, "meta": {},
	"param": {}, "source": {}, "track": {}, "wbr": {},
}

// rawTextElements hold raw text content that must not be entity-escaped.
var rawTextElements = map[string]struct{}{
	"script": {}, "style": {},
}

// Render serializes the node tree back to HTML. It is the inverse of
// Parse for trees that Parse produced: attributes keep their stored
// order, void elements are emitted without a closing tag, and text is
// entity-escaped except inside raw-text elements.
func Render(n *Node) string {
	var sb strings.Builder
	writeNode(&sb, n, false)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node, rawText bool) {
	switch n.Type {
	case FragmentNode:
		for _, c := range n.Children {
			writeNode(sb, c, rawText)
		}
	case TextNode:
		if rawText {
			sb.WriteString(n.Text)
		} else {
			sb.WriteString(html.EscapeString(n.Text))
		}
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.Text)
		sb.WriteString("-->")
	case ElementNode:
		sb.WriteByte('<')
		sb.WriteString(n.Tag)
		for _, a := range n.Attrs {
			sb.WriteByte(' ')
			sb.WriteString(a.Key)
			sb.WriteString(`="`)
			sb.WriteString(html.EscapeString(a.Value))
			sb.WriteByte('"')
		}
		sb.WriteByte('>')

		if _, void := voidElements[n.Tag]; void {
			return
		}

		_, raw := rawTextElements[n.Tag]
		for _, c := range n.Children {
			writeNode(sb, c, raw)
		}

		sb.WriteString("</")
		sb.WriteString(n.Tag)
		sb.WriteByte('>')
	}
}
