package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	root := Parse(`<section class="hero"><h1>Welcome</h1><p>Intro</p></section>`)
	require.Equal(t, FragmentNode, root.Type)
	require.Len(t, root.Children, 1)

	section := root.Children[0]
	assert.Equal(t, ElementNode, section.Type)
	assert.Equal(t, "section", section.Tag)
	assert.True(t, section.HasClass("hero"))
	require.Len(t, section.Children, 2)
	assert.Equal(t, "h1", section.Children[0].Tag)
	assert.Equal(t, "Welcome", section.Children[0].InnerText())
	assert.Equal(t, "p", section.Children[1].Tag)
}

func TestParse_MalformedRecovers(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "unclosed tag", source: "<div><p>text"},
		{name: "stray closing tag", source: "</div>text"},
		{name: "interleaved tags", source: "<b><i>text</b></i>"},
		{name: "bare text", source: "just text"},
		{name: "attribute soup", source: `<div class="a" class=b =>x</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := Parse(tt.source)
			require.NotNil(t, root)
			assert.Equal(t, FragmentNode, root.Type)
			assert.NotEmpty(t, root.Children)
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	root := Parse("")
	require.NotNil(t, root)
	assert.Equal(t, FragmentNode, root.Type)
	assert.Empty(t, root.Children)
}

func TestParse_PreservesWhitespaceText(t *testing.T) {
	root := Parse("<div>a</div>\n  \t\n<div>b</div>")
	require.Len(t, root.Children, 3)
	ws := root.Children[1]
	assert.Equal(t, TextNode, ws.Type)
	assert.Equal(t, "\n  \t\n", ws.Text)
}

func TestParse_AttributeOrder(t *testing.T) {
	root := Parse(`<img src="a.png" alt="A" width="10" height="20">`)
	require.Len(t, root.Children, 1)
	img := root.Children[0]

	keys := make([]string, 0, len(img.Attrs))
	for _, a := range img.Attrs {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"src", "alt", "width", "height"}, keys)
}

func TestParse_Comment(t *testing.T) {
	root := Parse("<!-- marker --><p>x</p>")
	require.Len(t, root.Children, 2)
	assert.Equal(t, CommentNode, root.Children[0].Type)
	assert.Equal(t, " marker ", root.Children[0].Text)
}

func TestNode_Helpers(t *testing.T) {
	n := Element("div", Attribute{Key: "class", Value: "card wide"}, Attribute{Key: "id", Value: "c1"})
	n.Append(Text("hello, "), Element("em").Append(Text("world")))

	v, ok := n.Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "c1", v)

	_, ok = n.Attr("missing")
	assert.False(t, ok)

	assert.True(t, n.HasClass("card"))
	assert.True(t, n.HasClass("wide"))
	assert.False(t, n.HasClass("car"))

	assert.Equal(t, "hello, world", n.InnerText())
}

func TestNode_Clone(t *testing.T) {
	orig := Element("div", Attribute{Key: "class", Value: "a"}).Append(Element("span").Append(Text("x")))
	clone := orig.Clone()

	clone.Attrs[0].Value = "b"
	clone.Children[0].Children[0].Text = "y"

	assert.Equal(t, "a", orig.Attrs[0].Value)
	assert.Equal(t, "x", orig.Children[0].Children[0].Text)
}
