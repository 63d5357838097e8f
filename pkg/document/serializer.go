package document

import (
	"github.com/pkg/errors"

	"github.com/pagemason/pagemason/pkg/markup"
)

// ToMarkup renders the tree back to an HTML string. Every instance's
// definition is resolved against the catalog up front, so an
// unresolved id fails the whole serialization atomically before
// anything is rendered.
//
// Re-parsing and re-mapping the output yields a tree with the same
// (definition id, props) sequence in document order; passthrough
// instances re-emit their captured node verbatim unless their props
// were edited.
func ToMarkup(t *Tree) (string, error) {
	if err := t.validateDefinitions(); err != nil {
		return "", err
	}

	root, err := t.renderInstance(t.root)
	if err != nil {
		return "", err
	}
	return markup.Render(root), nil
}

// validateDefinitions checks that every instance's definition id
// resolves in the active catalog.
func (t *Tree) validateDefinitions() error {
	var unresolved string
	t.Walk(func(inst *Instance, _ int) bool {
		if _, ok := t.catalog.Lookup(inst.def); !ok {
			unresolved = inst.def
			return false
		}
		return true
	})
	if unresolved != "" {
		return errors.Wrap(ErrDefinitionUnresolved, unresolved)
	}
	return nil
}

func (t *Tree) renderInstance(id NodeID) (*markup.Node, error) {
	inst := t.nodes[id]

	children := make([]*markup.Node, 0, len(inst.children))
	for _, child := range inst.children {
		node, err := t.renderInstance(child)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}

	// Untouched passthrough regions reproduce their original markup,
	// including attribute order, byte for byte.
	if inst.captured != nil && !inst.edited {
		node := inst.captured.CloneShallow()
		return node.Append(children...), nil
	}

	def, ok := t.catalog.Lookup(inst.def)
	if !ok {
		return nil, errors.Wrap(ErrDefinitionUnresolved, inst.def)
	}
	node, err := def.Render(inst.props, children)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render block %q", inst.def)
	}
	return node, nil
}
