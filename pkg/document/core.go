package document

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"

	"github.com/pagemason/pagemason/pkg/markup"
)

// Structural definition ids. They are present in every catalog and
// guarantee that any parsed markup maps to some block instance.
const (
	PageBlockID    = "core/page"
	RawBlockID     = "core/raw"
	TextBlockID    = "core/text"
	CommentBlockID = "core/comment"
)

// Built-in content block ids registered by RegisterBuiltins.
const (
	HeadingBlockID  = "core/heading"
	ImageBlockID    = "core/image"
	MarkdownBlockID = "core/markdown"
)

var markdownSanitizer = bluemonday.UGCPolicy()

// structuralDefinitions returns the definitions NewCatalog seeds every
// catalog with. None of them carries a Match predicate: the page root
// is created explicitly and the passthrough variants are assigned by
// the mapper when classification finds no match.
func structuralDefinitions() []*Definition {
	return []*Definition{
		{
			ID:          PageBlockID,
			DisplayName: "Page",
			Container:   true,
			Render: func(_ Props, children []*markup.Node) (*markup.Node, error) {
				return markup.Fragment(children...), nil
			},
		},
		{
			ID:          RawBlockID,
			DisplayName: "Raw Markup",
			Container:   true,
			Extract:     rawProps,
			Render:      renderRaw,
		},
		{
			ID:          TextBlockID,
			DisplayName: "Text",
			Render: func(props Props, _ []*markup.Node) (*markup.Node, error) {
				return markup.Text(propString(props, "text")), nil
			},
		},
		{
			ID:          CommentBlockID,
			DisplayName: "Comment",
			Render: func(props Props, _ []*markup.Node) (*markup.Node, error) {
				return markup.Comment(propString(props, "text")), nil
			},
		},
	}
}

// RegisterBuiltins registers the core content blocks. Theme blocks are
// registered first so they take precedence in classification; the
// builtins act as a fallback tier above raw passthrough.
func RegisterBuiltins(c *Catalog) error {
	builtins := []*Definition{
		headingDefinition(),
		imageDefinition(),
		markdownDefinition(),
	}
	for _, def := range builtins {
		if err := c.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func headingDefinition() *Definition {
	return &Definition{
		ID:           HeadingBlockID,
		DisplayName:  "Heading",
		DefaultProps: Props{"level": 2, "text": ""},
		Match: func(n *markup.Node) bool {
			return headingLevel(n.Tag) > 0
		},
		Extract: func(n *markup.Node) Props {
			return Props{
				"level": headingLevel(n.Tag),
				"text":  n.InnerText(),
			}
		},
		Render: func(props Props, _ []*markup.Node) (*markup.Node, error) {
			level := propInt(props, "level")
			if level < 1 || level > 6 {
				return nil, errors.Errorf("document: heading level %d out of range", level)
			}
			h := markup.Element("h" + strconv.Itoa(level))
			return h.Append(markup.Text(propString(props, "text"))), nil
		},
	}
}

func imageDefinition() *Definition {
	return &Definition{
		ID:           ImageBlockID,
		DisplayName:  "Image",
		DefaultProps: Props{"src": "", "alt": ""},
		Match: func(n *markup.Node) bool {
			return n.Tag == "img"
		},
		Extract: func(n *markup.Node) Props {
			src, _ := n.Attr("src")
			alt, _ := n.Attr("alt")
			return Props{"src": src, "alt": alt}
		},
		Render: func(props Props, _ []*markup.Node) (*markup.Node, error) {
			return markup.Element(
				"img",
				markup.Attribute{Key: "src", Value: propString(props, "src")},
				markup.Attribute{Key: "alt", Value: propString(props, "alt")},
			), nil
		},
	}
}

// markdownDefinition renders a markdown source prop to sanitized HTML.
// The source travels in the data-source attribute so the rendered
// output re-maps to the same props without parsing HTML back into
// markdown.
func markdownDefinition() *Definition {
	return &Definition{
		ID:           MarkdownBlockID,
		DisplayName:  "Markdown",
		DefaultProps: Props{"source": ""},
		Match: func(n *markup.Node) bool {
			id, _ := n.Attr("data-block")
			return n.Tag == "div" && id == MarkdownBlockID
		},
		Extract: func(n *markup.Node) Props {
			source, _ := n.Attr("data-source")
			return Props{"source": source}
		},
		Render: func(props Props, _ []*markup.Node) (*markup.Node, error) {
			source := propString(props, "source")

			var buf bytes.Buffer
			if err := goldmark.Convert([]byte(source), &buf); err != nil {
				return nil, errors.Wrap(err, "failed to render markdown block")
			}
			rendered := markdownSanitizer.SanitizeBytes(buf.Bytes())

			div := markup.Element(
				"div",
				markup.Attribute{Key: "data-block", Value: MarkdownBlockID},
				markup.Attribute{Key: "data-source", Value: source},
			)
			return div.Append(markup.Parse(string(rendered)).Children...), nil
		},
	}
}

// rawProps derives passthrough props from an element so that mapping
// the rendered output extracts an identical prop set.
func rawProps(n *markup.Node) Props {
	attrs := make(map[string]any, len(n.Attrs))
	for _, a := range n.Attrs {
		attrs[a.Key] = a.Value
	}
	return Props{"tag": n.Tag, "attrs": attrs}
}

// renderRaw rebuilds an element from passthrough props. It runs only
// for edited passthrough instances; untouched ones re-emit their
// captured node with the original attribute order.
func renderRaw(props Props, children []*markup.Node) (*markup.Node, error) {
	tag := propString(props, "tag")
	if tag == "" {
		return markup.Fragment(children...), nil
	}

	el := markup.Element(tag)
	if attrs, ok := props["attrs"].(map[string]any); ok {
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			el.Attrs = append(el.Attrs, markup.Attribute{Key: k, Value: fmt.Sprint(attrs[k])})
		}
	}
	return el.Append(children...), nil
}

func headingLevel(tag string) int {
	if len(tag) != 2 || tag[0] != 'h' {
		return 0
	}
	level := int(tag[1] - '0')
	if level < 1 || level > 6 {
		return 0
	}
	return level
}

func propString(props Props, key string) string {
	switch v := props[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// propInt tolerates the numeric types a prop value passes through:
// ints from Go callers, float64 from JSON snapshots, strings from
// markup attributes.
func propInt(props Props, key string) int {
	switch v := props[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
