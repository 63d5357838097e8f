package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	require.NoError(t, RegisterBuiltins(c))
	return c
}

func TestTree_Bootstrap(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)

	root, ok := tree.Find(tree.Root())
	require.True(t, ok)
	assert.Equal(t, PageBlockID, root.DefinitionID())
	assert.Empty(t, root.Children())
	assert.Equal(t, 1, tree.Len())
	assert.NotEmpty(t, tree.DocumentID())
}

func TestTree_Insert(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)

	first, err := tree.Insert(tree.Root(), 0, HeadingBlockID)
	require.NoError(t, err)
	second, err := tree.Insert(tree.Root(), 0, ImageBlockID)
	require.NoError(t, err)

	root, _ := tree.Find(tree.Root())
	assert.Equal(t, []NodeID{second, first}, root.Children())

	inst, ok := tree.Find(first)
	require.True(t, ok)
	assert.Equal(t, HeadingBlockID, inst.DefinitionID())
	assert.Equal(t, Props{"level": 2, "text": ""}, inst.Props())
}

func TestTree_Insert_DefaultPropsAreCopied(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)

	a, err := tree.Insert(tree.Root(), 0, HeadingBlockID)
	require.NoError(t, err)
	b, err := tree.Insert(tree.Root(), 1, HeadingBlockID)
	require.NoError(t, err)

	require.NoError(t, tree.SetProps(a, Props{"text": "changed"}))

	instB, _ := tree.Find(b)
	assert.Equal(t, "", instB.Props()["text"])
}

func TestTree_Insert_Errors(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)

	_, err := tree.Insert(NodeID(999), 0, HeadingBlockID)
	assert.ErrorIs(t, err, ErrInvalidParent)

	_, err = tree.Insert(tree.Root(), 1, HeadingBlockID)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = tree.Insert(tree.Root(), -1, HeadingBlockID)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = tree.Insert(tree.Root(), 0, "theme/unregistered")
	assert.ErrorIs(t, err, ErrDefinitionUnresolved)

	assert.Equal(t, 1, tree.Len())
}

func TestTree_Move(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)

	section, err := tree.Insert(tree.Root(), 0, RawBlockID)
	require.NoError(t, err)
	heading, err := tree.Insert(tree.Root(), 1, HeadingBlockID)
	require.NoError(t, err)

	require.NoError(t, tree.Move(heading, section, 0))

	root, _ := tree.Find(tree.Root())
	assert.Equal(t, []NodeID{section}, root.Children())
	sec, _ := tree.Find(section)
	assert.Equal(t, []NodeID{heading}, sec.Children())

	parent, ok := tree.Parent(heading)
	require.True(t, ok)
	assert.Equal(t, section, parent)
}

func TestTree_Move_WithinSameParent(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)

	a, _ := tree.Insert(tree.Root(), 0, HeadingBlockID)
	b, _ := tree.Insert(tree.Root(), 1, HeadingBlockID)
	c, _ := tree.Insert(tree.Root(), 2, HeadingBlockID)

	require.NoError(t, tree.Move(a, tree.Root(), 2))

	root, _ := tree.Find(tree.Root())
	assert.Equal(t, []NodeID{b, c, a}, root.Children())

	// The last valid index shrinks by one while the node is detached.
	assert.ErrorIs(t, tree.Move(a, tree.Root(), 3), ErrIndexOutOfRange)
}

func TestTree_Move_CycleRejectedUnchanged(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)

	outer, _ := tree.Insert(tree.Root(), 0, RawBlockID)
	inner, err := tree.Insert(outer, 0, RawBlockID)
	require.NoError(t, err)
	leaf, err := tree.Insert(inner, 0, RawBlockID)
	require.NoError(t, err)

	before := treeShape(tree)

	assert.ErrorIs(t, tree.Move(outer, leaf, 0), ErrCycleDetected)
	assert.ErrorIs(t, tree.Move(outer, inner, 0), ErrCycleDetected)
	assert.ErrorIs(t, tree.Move(outer, outer, 0), ErrCycleDetected)

	assert.Equal(t, before, treeShape(tree))
}

func TestTree_Move_Errors(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)
	child, _ := tree.Insert(tree.Root(), 0, HeadingBlockID)

	assert.ErrorIs(t, tree.Move(tree.Root(), child, 0), ErrCannotRemoveRoot)
	assert.ErrorIs(t, tree.Move(NodeID(999), tree.Root(), 0), ErrUnknownNode)
	assert.ErrorIs(t, tree.Move(child, NodeID(999), 0), ErrInvalidParent)
}

func TestTree_Remove(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)

	section, _ := tree.Insert(tree.Root(), 0, RawBlockID)
	heading, err := tree.Insert(section, 0, HeadingBlockID)
	require.NoError(t, err)

	require.NoError(t, tree.Remove(section))

	// The whole subtree leaves the arena; ids are never reused.
	_, ok := tree.Find(section)
	assert.False(t, ok)
	_, ok = tree.Find(heading)
	assert.False(t, ok)
	assert.Equal(t, 1, tree.Len())

	next, err := tree.Insert(tree.Root(), 0, HeadingBlockID)
	require.NoError(t, err)
	assert.Greater(t, next, heading)
}

func TestTree_Remove_Root(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)
	assert.ErrorIs(t, tree.Remove(tree.Root()), ErrCannotRemoveRoot)
}

func TestTree_SetProps(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)
	id, _ := tree.Insert(tree.Root(), 0, HeadingBlockID)

	require.NoError(t, tree.SetProps(id, Props{"text": "Welcome", "level": 1}))

	inst, _ := tree.Find(id)
	assert.Equal(t, Props{"level": 1, "text": "Welcome"}, inst.Props())

	// nil deletes a key; other keys are untouched.
	require.NoError(t, tree.SetProps(id, Props{"level": nil}))
	assert.Equal(t, Props{"text": "Welcome"}, inst.Props())

	assert.ErrorIs(t, tree.SetProps(NodeID(999), Props{}), ErrUnknownNode)
}

func TestTree_InvariantsUnderEditSequence(t *testing.T) {
	tree := NewTree(testCatalog(t), "home", FormatHTML)
	rootID := tree.Root()

	var ids []NodeID
	for i := 0; i < 5; i++ {
		id, err := tree.Insert(rootID, i, RawBlockID)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for i := 1; i < 5; i++ {
		require.NoError(t, tree.Move(ids[i], ids[i-1], 0))
	}
	require.NoError(t, tree.Move(ids[4], rootID, 1))
	require.NoError(t, tree.Remove(ids[1]))
	require.NoError(t, tree.SetProps(ids[0], Props{"tag": "div"}))

	assert.Equal(t, rootID, tree.Root())
	assertConnected(t, tree)
}

// assertConnected verifies that the walk from the root reaches every
// arena entry exactly once and that parent links agree with child
// lists.
func assertConnected(t *testing.T, tree *Tree) {
	t.Helper()

	seen := map[NodeID]int{}
	tree.Walk(func(inst *Instance, _ int) bool {
		seen[inst.ID()]++
		for _, child := range inst.Children() {
			parent, ok := tree.Parent(child)
			require.True(t, ok)
			assert.Equal(t, inst.ID(), parent)
		}
		return true
	})

	assert.Len(t, seen, tree.Len())
	for id, count := range seen {
		assert.Equalf(t, 1, count, "node %d visited %d times", id, count)
	}
}

func treeShape(tree *Tree) map[NodeID][]NodeID {
	shape := map[NodeID][]NodeID{}
	tree.Walk(func(inst *Instance, _ int) bool {
		shape[inst.ID()] = inst.Children()
		return true
	})
	return shape
}
