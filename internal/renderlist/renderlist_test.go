package renderlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retained-renderer/core"
	"retained-renderer/scene"
)

func names(items []*Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Object.Name
	}
	return out
}

func mesh(name string, m *scene.Material) *scene.Node {
	return scene.NewMesh(name, nil, m)
}

func TestPushSplitsByTransparency(t *testing.T) {
	l := New()
	l.Init()
	opaque := scene.NewBasicMaterial(core.ColorWhite)
	glass := scene.NewBasicMaterial(core.ColorWhite)
	glass.Transparent = true

	l.Push(mesh("a", opaque), nil, opaque, 0, 1, nil)
	l.Push(mesh("b", glass), nil, glass, 0, 1, nil)
	l.Push(mesh("c", opaque), nil, opaque, 0, 1, nil)

	assert.Equal(t, []string{"a", "c"}, names(l.Opaque))
	assert.Equal(t, []string{"b"}, names(l.Transparent))
	assert.Equal(t, 3, l.Len())
}

func TestOpaqueSortKeys(t *testing.T) {
	l := New()
	l.Init()
	m1 := scene.NewBasicMaterial(core.ColorWhite)
	m2 := scene.NewBasicMaterial(core.ColorWhite)

	late := mesh("late", m1)
	late.RenderOrder = 1
	l.Push(late, nil, m1, 0, 0, nil)
	l.Push(mesh("prog1-far", m1), nil, m1, 1, 5, nil)
	l.Push(mesh("prog1-near", m1), nil, m1, 1, 2, nil)
	l.Push(mesh("prog0-m2", m2), nil, m2, 0, 0, nil)
	l.Push(mesh("prog0-m1", m1), nil, m1, 0, 9, nil)
	l.Sort()

	assert.Equal(t, []string{"prog0-m1", "prog0-m2", "prog1-near", "prog1-far", "late"}, names(l.Opaque))
}

func TestTransparentSortsBackToFront(t *testing.T) {
	l := New()
	l.Init()
	m := scene.NewBasicMaterial(core.ColorWhite)
	m.Transparent = true

	l.Push(mesh("near", m), nil, m, 0, 1, nil)
	l.Push(mesh("far", m), nil, m, 0, 10, nil)
	l.Push(mesh("mid", m), nil, m, 0, 5, nil)
	first := mesh("first", m)
	first.RenderOrder = -1
	l.Push(first, nil, m, 0, 0, nil)
	l.Sort()

	assert.Equal(t, []string{"first", "far", "mid", "near"}, names(l.Transparent))
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	l := New()
	l.Init()
	m := scene.NewBasicMaterial(core.ColorWhite)
	node := mesh("multi", m)
	groups := []scene.Group{{Start: 0, Count: 3}, {Start: 3, Count: 3}, {Start: 6, Count: 3}}
	for i := range groups {
		l.Push(node, nil, m, 0, 1, &groups[i])
	}
	l.Sort()
	require.Len(t, l.Opaque, 3)
	for i, it := range l.Opaque {
		assert.Same(t, &groups[i], it.Group)
	}
}

func TestEqualKeysKeepPushOrder(t *testing.T) {
	l := New()
	l.Init()
	m := scene.NewBasicMaterial(core.ColorWhite)
	glass := scene.NewBasicMaterial(core.ColorWhite)
	glass.Transparent = true

	// Node ids grow with creation; push order is the reverse.
	b, a := mesh("b", m), mesh("a", m)
	bt, at := mesh("bt", glass), mesh("at", glass)
	require.Less(t, b.Id, a.Id)
	l.Push(a, nil, m, 0, 1, nil)
	l.Push(b, nil, m, 0, 1, nil)
	l.Push(at, nil, glass, 0, 1, nil)
	l.Push(bt, nil, glass, 0, 1, nil)
	l.Sort()

	assert.Equal(t, []string{"a", "b"}, names(l.Opaque))
	assert.Equal(t, []string{"at", "bt"}, names(l.Transparent))
}

func TestPoolIsReusedAcrossFrames(t *testing.T) {
	l := New()
	m := scene.NewBasicMaterial(core.ColorWhite)

	l.Init()
	for _, n := range []string{"a", "b", "c"} {
		l.Push(mesh(n, m), nil, m, 0, 0, nil)
	}
	l.Finish()
	first := l.items[0]

	l.Init()
	l.Push(mesh("d", m), nil, m, 0, 0, nil)
	l.Finish()

	assert.Same(t, first, l.items[0])
	assert.Equal(t, "d", l.items[0].Object.Name)
	assert.Len(t, l.items, 3)
	assert.Nil(t, l.items[1].Object, "items past the frame are cleared")
	assert.Equal(t, 1, l.Len())
}

func TestListsPerSceneAndCamera(t *testing.T) {
	ls := NewLists()
	a := ls.Get(1, 2)
	assert.Same(t, a, ls.Get(1, 2))
	assert.NotSame(t, a, ls.Get(1, 3))
	ls.Dispose()
	assert.NotSame(t, a, ls.Get(1, 2))
}
