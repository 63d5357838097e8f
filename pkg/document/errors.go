package document

import "errors"

// Contract violations rejected before any mutation is applied. A tree
// that returns one of these is guaranteed to be unchanged.
var (
	// ErrInvalidParent is returned when the parent id of an insert or
	// move does not resolve to an instance in the tree.
	ErrInvalidParent = errors.New("document: invalid parent")

	// ErrIndexOutOfRange is returned when an insertion index is
	// negative or greater than the target's child count.
	ErrIndexOutOfRange = errors.New("document: index out of range")

	// ErrCycleDetected is returned when a move would reattach a node
	// under one of its own descendants.
	ErrCycleDetected = errors.New("document: cycle detected")

	// ErrCannotRemoveRoot is returned when an operation would remove
	// or detach the root instance.
	ErrCannotRemoveRoot = errors.New("document: cannot remove root")

	// ErrUnknownNode is returned when a node id does not resolve.
	ErrUnknownNode = errors.New("document: unknown node")

	// ErrDefinitionUnresolved is returned when a block's definition id
	// is not registered in the active catalog. Serialization fails
	// atomically on it; nothing is emitted.
	ErrDefinitionUnresolved = errors.New("document: definition unresolved")

	// ErrDuplicateDefinition is returned when a definition id is
	// registered twice in the same catalog.
	ErrDuplicateDefinition = errors.New("document: duplicate definition")
)
