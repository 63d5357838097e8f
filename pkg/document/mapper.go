package document

import (
	"github.com/pagemason/pagemason/pkg/markup"
)

// FromMarkup parses src and maps the resulting node tree onto block
// instances against the catalog. Classification is first-match-wins in
// catalog registration order; nodes no definition matches become
// passthrough instances that capture the node verbatim, so every input
// maps to a tree. The fragment root becomes the page container.
//
// Parse recovery is silent: malformed markup yields a best-effort
// tree, never an error. The error return is reserved for catalog
// registration problems surfaced through definition extraction.
func FromMarkup(src string, catalog *Catalog, path string, format Format, opts ...TreeOption) (*Tree, error) {
	tree := NewTree(catalog, path, format, opts...)
	root := markup.Parse(src)

	for _, child := range root.Children {
		if err := tree.mapNode(child, tree.root); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// mapNode classifies one parsed node, attaches the resulting instance
// under parent, and recurses into children for container definitions.
func (t *Tree) mapNode(n *markup.Node, parent NodeID) error {
	switch n.Type {
	case markup.TextNode:
		t.attach(parent, TextBlockID, Props{"text": n.Text}, n.CloneShallow())
		return nil
	case markup.CommentNode:
		t.attach(parent, CommentBlockID, Props{"text": n.Text}, n.CloneShallow())
		return nil
	case markup.FragmentNode:
		for _, child := range n.Children {
			if err := t.mapNode(child, parent); err != nil {
				return err
			}
		}
		return nil
	}

	def := t.catalog.Classify(n)
	if def == nil {
		inst := t.attach(parent, RawBlockID, rawProps(n), n.CloneShallow())
		for _, child := range n.Children {
			if err := t.mapNode(child, inst.id); err != nil {
				return err
			}
		}
		return nil
	}

	props := def.DefaultProps.Clone()
	if def.Extract != nil {
		props = def.Extract(n)
	}

	inst := t.attach(parent, def.ID, props, nil)
	if def.Container {
		for _, child := range n.Children {
			if err := t.mapNode(child, inst.id); err != nil {
				return err
			}
		}
	}
	return nil
}

// attach appends a new instance as the last child of parent. It is the
// mapper's and the snapshot decoder's entry point into the arena and
// bypasses Insert's default-props seeding.
func (t *Tree) attach(parent NodeID, defID string, props Props, captured *markup.Node) *Instance {
	inst := t.newInstance(defID, props)
	inst.captured = captured

	p := t.nodes[parent]
	p.children = append(p.children, inst.id)
	t.parents[inst.id] = parent
	return inst
}
