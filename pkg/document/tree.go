package document

import (
	"go.uber.org/zap"

	"github.com/pagemason/pagemason/internal/ulid"
	"github.com/pagemason/pagemason/pkg/markup"
)

// Format selects the persisted representation of a document.
type Format string

const (
	// FormatHTML stores the document as rendered markup.
	FormatHTML Format = "html"
	// FormatJSON stores the document as a structural snapshot,
	// bypassing the markup parse and map steps entirely.
	FormatJSON Format = "json"
)

// ValidFormat reports whether s names a supported format.
func ValidFormat(s string) bool {
	return Format(s) == FormatHTML || Format(s) == FormatJSON
}

// NodeID addresses an instance within its tree. Ids come from a
// monotonic counter starting at 1 and are never reused, so a stale id
// held across a remove simply stops resolving instead of aliasing a
// newer instance.
type NodeID int64

// Instance is one block occurrence in a tree. Instances live in the
// tree's arena and are owned exclusively by it; they are never shared
// across trees.
type Instance struct {
	id       NodeID
	def      string
	props    Props
	children []NodeID

	// captured holds the original shallow node of a passthrough
	// instance so untouched regions re-serialize byte-faithfully.
	// edited flips when props change and switches rendering from the
	// captured node to the definition's Render.
	captured *markup.Node
	edited   bool
}

func (i *Instance) ID() NodeID           { return i.id }
func (i *Instance) DefinitionID() string { return i.def }

// Props returns the instance's props. The map is owned by the tree;
// callers mutate it only through Tree.SetProps.
func (i *Instance) Props() Props { return i.props }

// Children returns the child ids in document order as a copy.
func (i *Instance) Children() []NodeID {
	out := make([]NodeID, len(i.children))
	copy(out, i.children)
	return out
}

// Tree is the in-memory editable form of one open document. Instances
// are stored arena-style in flat maps keyed by NodeID; parent links
// live in their own table, which reduces cycle detection to an
// ancestor walk. A tree serves one logical editor at a time and does
// no internal locking.
type Tree struct {
	nodes   map[NodeID]*Instance
	parents map[NodeID]NodeID
	root    NodeID
	nextID  NodeID

	catalog *Catalog
	path    string
	format  Format
	docID   string

	logger *zap.Logger
}

// TreeOption configures a new tree.
type TreeOption func(*Tree)

// WithLogger attaches a logger to the tree. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) TreeOption {
	return func(t *Tree) { t.logger = logger }
}

// WithDocumentID pins the document identity instead of generating a
// fresh ULID. Snapshots loaded from storage keep their identity.
func WithDocumentID(id string) TreeOption {
	return func(t *Tree) { t.docID = id }
}

// NewTree returns a tree holding a single default root block, the
// shape a first-open bootstrap produces.
func NewTree(catalog *Catalog, path string, format Format, opts ...TreeOption) *Tree {
	t := &Tree{
		nodes:   make(map[NodeID]*Instance),
		parents: make(map[NodeID]NodeID),
		nextID:  1,
		catalog: catalog,
		path:    path,
		format:  format,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.docID == "" {
		t.docID = ulid.GenerateID()
	}

	root := t.newInstance(PageBlockID, Props{})
	t.root = root.id
	return t
}

// SetFormat re-binds the tree to a persisted format. The store calls
// it when saving, so a tree loaded as html and saved as json snapshots
// with the format it is actually stored under.
func (t *Tree) SetFormat(format Format) { t.format = format }

func (t *Tree) Root() NodeID       { return t.root }
func (t *Tree) Path() string       { return t.path }
func (t *Tree) Format() Format     { return t.format }
func (t *Tree) DocumentID() string { return t.docID }
func (t *Tree) Catalog() *Catalog  { return t.catalog }

// Len returns the number of instances in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Find resolves a node id to its instance in O(1).
func (t *Tree) Find(id NodeID) (*Instance, bool) {
	inst, ok := t.nodes[id]
	return inst, ok
}

// Parent returns the parent id of a node. The root has no parent.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	p, ok := t.parents[id]
	return p, ok
}

// Insert creates a new instance of defID under parent at index, seeded
// with a deep copy of the definition's default props, and returns its
// id. It fails with ErrInvalidParent, ErrIndexOutOfRange or
// ErrDefinitionUnresolved without mutating the tree.
func (t *Tree) Insert(parent NodeID, index int, defID string) (NodeID, error) {
	p, ok := t.nodes[parent]
	if !ok {
		return 0, ErrInvalidParent
	}
	if index < 0 || index > len(p.children) {
		return 0, ErrIndexOutOfRange
	}
	def, ok := t.catalog.Lookup(defID)
	if !ok {
		return 0, ErrDefinitionUnresolved
	}

	inst := t.newInstance(def.ID, def.DefaultProps.Clone())
	p.children = insertID(p.children, index, inst.id)
	t.parents[inst.id] = parent

	t.logger.Debug(
		"inserted block",
		zap.Int64("id", int64(inst.id)),
		zap.String("block", def.ID),
	)
	return inst.id, nil
}

// Move detaches a node and reattaches it under newParent at newIndex.
// All failures are detected before the tree is touched: moving the
// root fails with ErrCannotRemoveRoot, and a newParent that is the
// node itself or one of its descendants fails with ErrCycleDetected.
// newIndex is validated against newParent's child count as it will be
// after the detach.
func (t *Tree) Move(id, newParent NodeID, newIndex int) error {
	if _, ok := t.nodes[id]; !ok {
		return ErrUnknownNode
	}
	if id == t.root {
		return ErrCannotRemoveRoot
	}
	np, ok := t.nodes[newParent]
	if !ok {
		return ErrInvalidParent
	}
	if t.isAncestorOrSelf(id, newParent) {
		return ErrCycleDetected
	}

	oldParent := t.parents[id]
	limit := len(np.children)
	if oldParent == newParent {
		limit--
	}
	if newIndex < 0 || newIndex > limit {
		return ErrIndexOutOfRange
	}

	op := t.nodes[oldParent]
	op.children = removeID(op.children, id)
	np.children = insertID(np.children, newIndex, id)
	t.parents[id] = newParent
	return nil
}

// Remove deletes the subtree rooted at id from the arena. The root
// cannot be removed.
func (t *Tree) Remove(id NodeID) error {
	if _, ok := t.nodes[id]; !ok {
		return ErrUnknownNode
	}
	if id == t.root {
		return ErrCannotRemoveRoot
	}

	parent := t.parents[id]
	p := t.nodes[parent]
	p.children = removeID(p.children, id)

	t.deleteSubtree(id)
	return nil
}

// SetProps merges patch into the node's props. A nil value in the
// patch deletes the key. No schema validation happens beyond the
// node's definition existing; prop shape correctness belongs to the
// block definition.
func (t *Tree) SetProps(id NodeID, patch Props) error {
	inst, ok := t.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	if _, ok := t.catalog.Lookup(inst.def); !ok {
		return ErrDefinitionUnresolved
	}

	inst.props.Merge(patch)
	inst.edited = true
	return nil
}

// Walk visits every instance in document order, root first. Returning
// false from fn stops the traversal.
func (t *Tree) Walk(fn func(inst *Instance, depth int) bool) {
	t.walk(t.root, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(*Instance, int) bool) bool {
	inst := t.nodes[id]
	if !fn(inst, depth) {
		return false
	}
	for _, child := range inst.children {
		if !t.walk(child, depth+1, fn) {
			return false
		}
	}
	return true
}

// isAncestorOrSelf reports whether node is target or one of target's
// ancestors, by walking the parent table from target towards the root.
func (t *Tree) isAncestorOrSelf(node, target NodeID) bool {
	for {
		if target == node {
			return true
		}
		parent, ok := t.parents[target]
		if !ok {
			return false
		}
		target = parent
	}
}

func (t *Tree) newInstance(defID string, props Props) *Instance {
	inst := &Instance{
		id:    t.nextID,
		def:   defID,
		props: props,
	}
	t.nextID++
	t.nodes[inst.id] = inst
	return inst
}

func (t *Tree) deleteSubtree(id NodeID) {
	inst := t.nodes[id]
	for _, child := range inst.children {
		t.deleteSubtree(child)
	}
	delete(t.nodes, id)
	delete(t.parents, id)
}

func insertID(ids []NodeID, index int, id NodeID) []NodeID {
	ids = append(ids, 0)
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	return ids
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
