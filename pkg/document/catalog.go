package document

import (
	"github.com/pkg/errors"

	"github.com/pagemason/pagemason/pkg/markup"
)

// Definition is a registered block template: it matches markup nodes,
// extracts their initial props and renders instances back to markup.
type Definition struct {
	// ID is unique within a catalog, conventionally "<theme>/<folder>"
	// or "core/<name>" for built-ins.
	ID          string
	DisplayName string

	// DefaultProps seed newly inserted instances.
	DefaultProps Props

	// Container blocks map their markup children recursively; leaf
	// blocks consume their subtree into props via Extract.
	Container bool

	// Match classifies a parsed node. A nil Match means the definition
	// is never selected by classification and can only be referenced
	// explicitly (structural definitions such as the page root).
	Match func(*markup.Node) bool

	// Extract derives initial props from a matched node. Nil means the
	// instance starts from a clone of DefaultProps.
	Extract func(*markup.Node) Props

	// Render produces the markup for an instance. The rendered output
	// of the instance's children is passed in document order.
	Render func(props Props, children []*markup.Node) (*markup.Node, error)
}

// Catalog is the active set of block definitions. Definitions are kept
// both keyed by id for O(1) lookup and as an ordered slice because
// classification is first-match-wins: Register order is significant
// and callers register the most specific definitions first.
type Catalog struct {
	order []*Definition
	byID  map[string]*Definition
}

// NewCatalog returns a catalog pre-seeded with the structural
// definitions every tree depends on: the page root and the passthrough
// variants that capture unmatched markup verbatim. They carry no Match
// predicate and never win classification.
func NewCatalog() *Catalog {
	c := &Catalog{byID: make(map[string]*Definition)}
	for _, def := range structuralDefinitions() {
		// Ids are fixed at compile time; a collision is a programming error.
		if err := c.Register(def); err != nil {
			panic(err)
		}
	}
	return c
}

// Register adds a definition to the catalog. Classification evaluates
// definitions in registration order and takes the first match, so the
// order of Register calls defines matching precedence.
func (c *Catalog) Register(def *Definition) error {
	if def.ID == "" {
		return errors.New("document: definition id must not be empty")
	}
	if _, exists := c.byID[def.ID]; exists {
		return errors.Wrap(ErrDuplicateDefinition, def.ID)
	}
	c.order = append(c.order, def)
	c.byID[def.ID] = def
	return nil
}

// Lookup returns the definition registered under id.
func (c *Catalog) Lookup(id string) (*Definition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// Classify returns the first registered definition whose Match accepts
// the node, or nil when no definition matches and the node should
// become a passthrough instance.
func (c *Catalog) Classify(n *markup.Node) *Definition {
	for _, def := range c.order {
		if def.Match != nil && def.Match(n) {
			return def
		}
	}
	return nil
}

// Definitions returns the registered definitions in registration
// order. The returned slice is shared; callers must not modify it.
func (c *Catalog) Definitions() []*Definition {
	return c.order
}
