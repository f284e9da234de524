package quadtree

import (
	"golang.org/x/sync/errgroup"
)

// bulkAddToNode builds a subtree under n (which must be childless on
// entry for anything beyond the small-batch shortcut) from handles in
// one pass: bounding box, Morton sort, recursive quartering. Used both
// by Index.AddBulk (the public entry point, which checks the childless
// precondition itself) and by node.condenseThis's subtree rebuild cases,
// which clear n's children immediately before calling this.
func bulkAddToNode[T any](n *node[T], handles []*itemHandle[T], threadLevel int) {
	if len(handles) == 0 {
		return
	}
	if len(handles)+len(n.items) <= MaxItemsPerNode {
		for _, h := range handles {
			n.storeHere(h)
		}
		return
	}
	ext := boundingExtrema(handles, n.policy, threadLevel)
	sortHandlesByMorton(handles, n.policy, ext)
	quarterBuild(n, handles, 0, len(handles), threadLevel)
}

// quarterBuild recursively quarters sorted[start:end] onto n. Ranges
// longer than bulkRangeThreshold over a non-degenerate area are split
// into four count-based quarters (remainder absorbed by the first);
// everything else is inserted flat with subdivision disabled.
func quarterBuild[T any](n *node[T], sorted []*itemHandle[T], start, end, threadLevel int) {
	length := end - start
	if length > bulkRangeThreshold && validSubdivisionArea(n.rect) {
		q1 := start + ceilDiv(length, 4)
		q2 := q1 + length/4
		q3 := q2 + length/4

		mid := n.policy.MortonPoint(sorted[q2].data)
		if !strictlyInside(mid, n.rect) {
			mid = n.rect.Center()
		}

		// The node has no items yet at this stage in the common case;
		// any pre-existing ones (Index.AddBulk onto a flat root that
		// already holds a few items leaves them in n.items) are spilled
		// aside and reinserted once the children exist.
		spill := n.items
		n.items = nil
		n.subdivideAt(mid)

		ranges := [4][2]int{{start, q1}, {q1, q2}, {q2, q3}, {q3, end}}
		children := [4]*node[T]{n.tl, n.tr, n.bl, n.br}

		if threadLevel > 0 {
			var g errgroup.Group
			for i := 0; i < 4; i++ {
				i := i
				g.Go(func() error {
					quarterBuild(children[i], sorted, ranges[i][0], ranges[i][1], threadLevel-1)
					return nil
				})
			}
			_ = g.Wait()
		} else {
			for i := 0; i < 4; i++ {
				quarterBuild(children[i], sorted, ranges[i][0], ranges[i][1], 0)
			}
		}

		for _, h := range spill {
			n.insert(h, false)
		}
		return
	}

	for i := start; i < end; i++ {
		n.insert(sorted[i], false)
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
