package quadtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkAddToNodeSmallBatchShortcut(t *testing.T) {
	n := newTestNode(Rectangle{X: -10, Y: -10, Width: 20, Height: 20})
	handles := make([]*itemHandle[labeledPoint], 0, 5)
	for i := 0; i < 5; i++ {
		handles = append(handles, &itemHandle[labeledPoint]{data: labeledPoint{X: float32(i), Y: float32(i)}})
	}
	bulkAddToNode(n, handles, 0)
	assert.False(t, n.hasChildren())
	assert.Len(t, n.items, 5)
	for _, h := range handles {
		assert.Same(t, n, h.owner)
	}
}

func TestBulkAddToNodeQuartersLargeBatch(t *testing.T) {
	n := newTestNode(Rectangle{X: -100, Y: -100, Width: 200, Height: 200})
	var handles []*itemHandle[labeledPoint]
	for i := 0; i < 200; i++ {
		x := float32((i*37)%190) - 95
		y := float32((i*53)%190) - 95
		handles = append(handles, &itemHandle[labeledPoint]{data: labeledPoint{X: x, Y: y}})
	}
	bulkAddToNode(n, handles, 0)

	require.True(t, n.hasChildren())
	assert.Equal(t, 200, n.subtreeItemCount())
	for _, h := range handles {
		require.NotNil(t, h.owner)
		assert.Same(t, h.owner, ownerOf(t, n, h))
	}
}

func TestBulkAddToNodeParallelMatchesSequentialCount(t *testing.T) {
	build := func(threadLevel int) *node[labeledPoint] {
		n := newTestNode(Rectangle{X: -100, Y: -100, Width: 200, Height: 200})
		var handles []*itemHandle[labeledPoint]
		for i := 0; i < 500; i++ {
			x := float32((i*71)%190) - 95
			y := float32((i*89)%190) - 95
			handles = append(handles, &itemHandle[labeledPoint]{data: labeledPoint{X: x, Y: y}})
		}
		bulkAddToNode(n, handles, threadLevel)
		return n
	}

	sequential := build(0)
	parallel := build(2)
	assert.Equal(t, sequential.subtreeItemCount(), parallel.subtreeItemCount())
	assert.Equal(t, 500, parallel.subtreeItemCount())
}

func TestBulkAddToNodeDegenerateAreaFallsBackFlat(t *testing.T) {
	// A rectangle whose area is already below the subdivision threshold
	// must never subdivide, however many items land in it.
	n := newTestNode(Rectangle{X: 0, Y: 0, Width: 0.05, Height: 0.05})
	var handles []*itemHandle[labeledPoint]
	for i := 0; i < 50; i++ {
		handles = append(handles, &itemHandle[labeledPoint]{data: labeledPoint{X: 0.01, Y: 0.01}})
	}
	bulkAddToNode(n, handles, 0)
	assert.False(t, n.hasChildren())
	assert.Len(t, n.items, 50)
}

func TestAddBulkViaIndexMatchesQuery(t *testing.T) {
	point := func(it idItem) Point { return Point{X: it.X, Y: it.Y} }
	key := func(it idItem) int { return it.ID }
	idx := NewIndex[idItem, int](worldRect(), NewPointShape(point), key)

	var batch []idItem
	for i := 0; i < 60; i++ {
		batch = append(batch, idItem{ID: i, X: float32(i%20) - 10, Y: float32((i*3)%20) - 10})
	}
	require.NoError(t, idx.AddBulk(batch, 2))
	assert.Equal(t, 60, idx.Count())
	assert.Equal(t, 60, idx.QueryCount(RegionRect(worldRect())))
}

// ownerOf walks the subtree under root looking for the node that
// currently owns h, independent of h.owner (used as a cross-check).
func ownerOf(t *testing.T, root *node[labeledPoint], h *itemHandle[labeledPoint]) *node[labeledPoint] {
	t.Helper()
	var found *node[labeledPoint]
	var walk func(n *node[labeledPoint])
	walk = func(n *node[labeledPoint]) {
		for _, item := range n.items {
			if item == h {
				found = n
			}
		}
		if n.hasChildren() {
			walk(n.tl)
			walk(n.tr)
			walk(n.bl)
			walk(n.br)
		}
	}
	walk(root)
	require.NotNil(t, found, "handle must be found somewhere in the subtree")
	return found
}
