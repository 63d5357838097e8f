package document

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/pagemason/pagemason/internal/ulid"
	"github.com/pagemason/pagemason/pkg/markup"
)

const snapshotVersion = 1

// snapshot is the persisted structural form of a tree. It nests
// instances directly instead of rendering them, which makes it both
// faster to reload and lossless for passthrough captures.
type snapshot struct {
	Version int           `json:"version"`
	ID      string        `json:"id"`
	Format  Format        `json:"format"`
	Root    *snapshotNode `json:"root"`
}

type snapshotNode struct {
	Block    string          `json:"block"`
	Props    Props           `json:"props,omitempty"`
	Children []*snapshotNode `json:"children,omitempty"`
	Captured *capturedNode   `json:"captured,omitempty"`
	Edited   bool            `json:"edited,omitempty"`
}

// capturedNode preserves a passthrough instance's original shallow
// node, attribute order included.
type capturedNode struct {
	Type  string         `json:"type"`
	Tag   string         `json:"tag,omitempty"`
	Attrs []capturedAttr `json:"attrs,omitempty"`
	Text  string         `json:"text,omitempty"`
}

type capturedAttr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ToSnapshot encodes the tree as a JSON structural snapshot. Like
// ToMarkup it fails atomically with ErrDefinitionUnresolved when any
// instance's definition is missing from the catalog.
func ToSnapshot(t *Tree) ([]byte, error) {
	if err := t.validateDefinitions(); err != nil {
		return nil, err
	}

	s := snapshot{
		Version: snapshotVersion,
		ID:      t.docID,
		Format:  t.format,
		Root:    t.encodeNode(t.root),
	}

	data, err := json.MarshalIndent(s, "", "  ")
	return data, errors.Wrap(err, "failed to encode snapshot")
}

// FromSnapshot decodes a snapshot into a fresh tree bound to the
// catalog. Definition ids are validated during decode so a tree never
// holds unresolvable blocks; unknown ids fail with
// ErrDefinitionUnresolved.
func FromSnapshot(data []byte, catalog *Catalog, path string, opts ...TreeOption) (*Tree, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "failed to decode snapshot")
	}
	if s.Root == nil {
		return nil, errors.New("document: snapshot has no root")
	}

	format := s.Format
	if !ValidFormat(string(format)) {
		format = FormatJSON
	}
	if ulid.ValidID(s.ID) {
		opts = append(opts, WithDocumentID(s.ID))
	}

	tree := NewTree(catalog, path, format, opts...)

	if _, ok := catalog.Lookup(s.Root.Block); !ok {
		return nil, errors.Wrap(ErrDefinitionUnresolved, s.Root.Block)
	}
	rootInst := tree.nodes[tree.root]
	rootInst.def = s.Root.Block
	rootInst.props = s.Root.Props.Clone()
	rootInst.edited = s.Root.Edited

	for _, child := range s.Root.Children {
		if err := tree.decodeNode(child, tree.root); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func (t *Tree) encodeNode(id NodeID) *snapshotNode {
	inst := t.nodes[id]
	out := &snapshotNode{
		Block:    inst.def,
		Props:    inst.props,
		Captured: encodeCaptured(inst.captured),
		Edited:   inst.edited,
	}
	for _, child := range inst.children {
		out.Children = append(out.Children, t.encodeNode(child))
	}
	return out
}

func (t *Tree) decodeNode(n *snapshotNode, parent NodeID) error {
	if _, ok := t.catalog.Lookup(n.Block); !ok {
		return errors.Wrap(ErrDefinitionUnresolved, n.Block)
	}

	inst := t.attach(parent, n.Block, n.Props.Clone(), decodeCaptured(n.Captured))
	inst.edited = n.Edited

	for _, child := range n.Children {
		if err := t.decodeNode(child, inst.id); err != nil {
			return err
		}
	}
	return nil
}

func encodeCaptured(n *markup.Node) *capturedNode {
	if n == nil {
		return nil
	}
	out := &capturedNode{Text: n.Text, Tag: n.Tag}
	switch n.Type {
	case markup.ElementNode:
		out.Type = "element"
	case markup.TextNode:
		out.Type = "text"
	case markup.CommentNode:
		out.Type = "comment"
	default:
		out.Type = "fragment"
	}
	for _, a := range n.Attrs {
		out.Attrs = append(out.Attrs, capturedAttr{Key: a.Key, Value: a.Value})
	}
	return out
}

func decodeCaptured(n *capturedNode) *markup.Node {
	if n == nil {
		return nil
	}
	var node *markup.Node
	switch n.Type {
	case "element":
		node = markup.Element(n.Tag)
		for _, a := range n.Attrs {
			node.Attrs = append(node.Attrs, markup.Attribute{Key: a.Key, Value: a.Value})
		}
	case "text":
		node = markup.Text(n.Text)
	case "comment":
		node = markup.Comment(n.Text)
	default:
		node = markup.Fragment()
	}
	return node
}
