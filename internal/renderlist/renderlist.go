// Package renderlist collects the draw items of one frame and sorts them
// for submission.
package renderlist

import (
	"sort"

	"retained-renderer/scene"
)

// Item is one draw: a node, the geometry and material it is drawn with, and
// an optional geometry group. ID is the push order within the frame and
// breaks sort ties.
type Item struct {
	ID          uint32
	Object      *scene.Node
	Geometry    *scene.Geometry
	Material    *scene.Material
	ProgramID   int
	RenderOrder int
	Z           float32
	Group       *scene.Group
}

// List holds the opaque and transparent items of a frame. Items live in a
// pool that only grows, so a steady scene allocates nothing per frame.
type List struct {
	Opaque      []*Item
	Transparent []*Item

	items []*Item
	last  int
}

func New() *List {
	return &List{last: -1}
}

// Init starts a new frame. Pooled items are kept for reuse.
func (l *List) Init() {
	l.last = -1
	l.Opaque = l.Opaque[:0]
	l.Transparent = l.Transparent[:0]
}

// Push appends an item to the opaque or transparent list depending on the
// material. programID orders opaque items by program; pass -1 when the
// material has no program yet.
func (l *List) Push(object *scene.Node, geometry *scene.Geometry, material *scene.Material, programID int, z float32, group *scene.Group) {
	l.last++
	var it *Item
	if l.last < len(l.items) {
		it = l.items[l.last]
	} else {
		it = &Item{}
		l.items = append(l.items, it)
	}
	*it = Item{
		ID:          uint32(l.last),
		Object:      object,
		Geometry:    geometry,
		Material:    material,
		ProgramID:   programID,
		RenderOrder: object.RenderOrder,
		Z:           z,
		Group:       group,
	}
	if material.Transparent {
		l.Transparent = append(l.Transparent, it)
	} else {
		l.Opaque = append(l.Opaque, it)
	}
}

// Len is the number of items pushed this frame.
func (l *List) Len() int { return l.last + 1 }

// Finish drops references held by pooled items past the frame's last index
// so disposed nodes and materials are not kept alive.
func (l *List) Finish() {
	for _, it := range l.items[l.last+1:] {
		if it.Object == nil {
			break
		}
		*it = Item{}
	}
}

// Sort orders opaque items front to back grouped by program and material,
// and transparent items back to front. Both sorts are stable.
func (l *List) Sort() {
	if len(l.Opaque) > 1 {
		sort.SliceStable(l.Opaque, func(i, j int) bool { return opaqueLess(l.Opaque[i], l.Opaque[j]) })
	}
	if len(l.Transparent) > 1 {
		sort.SliceStable(l.Transparent, func(i, j int) bool { return transparentLess(l.Transparent[i], l.Transparent[j]) })
	}
}

func opaqueLess(a, b *Item) bool {
	switch {
	case a.RenderOrder != b.RenderOrder:
		return a.RenderOrder < b.RenderOrder
	case a.ProgramID != b.ProgramID:
		return a.ProgramID < b.ProgramID
	case a.Material.Handle() != b.Material.Handle():
		return a.Material.Handle() < b.Material.Handle()
	case a.Z != b.Z:
		return a.Z < b.Z
	}
	return a.ID < b.ID
}

func transparentLess(a, b *Item) bool {
	switch {
	case a.RenderOrder != b.RenderOrder:
		return a.RenderOrder < b.RenderOrder
	case a.Z != b.Z:
		return a.Z > b.Z
	}
	return a.ID < b.ID
}

type listKey struct {
	scene, camera uint32
}

// Lists keeps one List per (scene, camera) pair so that pools sized for one
// view are not thrashed by another.
type Lists struct {
	lists map[listKey]*List
}

func NewLists() *Lists {
	return &Lists{lists: make(map[listKey]*List)}
}

// Get returns the list for the pair, creating it on first use.
func (ls *Lists) Get(sceneID, cameraID uint32) *List {
	k := listKey{sceneID, cameraID}
	l, ok := ls.lists[k]
	if !ok {
		l = New()
		ls.lists[k] = l
	}
	return l
}

// Dispose forgets every list.
func (ls *Lists) Dispose() {
	clear(ls.lists)
}
