package quadtree

// Tree-wide thresholds (spec §6). Kept as untyped constants rather than
// configuration so they can't drift into mutable global state.
const (
	// MaxItemsPerNode is the capacity of a leaf before it subdivides.
	MaxItemsPerNode = 10
	// MaxOptimizeDeletionReadd is the subtree-size ceiling under which
	// Condense rebuilds a subtree with one or two empty children from
	// scratch; at or above it such a subtree is left as it is.
	MaxOptimizeDeletionReadd = 22
	// bulkRangeThreshold is the range length the bulk loader must exceed
	// to quarter a range recursively; ranges of this length or shorter
	// are inserted flat.
	bulkRangeThreshold = 8
)

// node is one quadtree cell. Children are present together or absent
// together. items holds up to MaxItemsPerNode handles in the common
// case, more during condensation rebuilds or when subdivision has been
// declined for degenerate geometry.
type node[T any] struct {
	rect           Rectangle
	parent         *node[T]
	tl, tr, bl, br *node[T]
	items          []*itemHandle[T]
	policy         ShapePolicy[T]
}

func newNode[T any](rect Rectangle, parent *node[T], policy ShapePolicy[T]) *node[T] {
	return &node[T]{rect: rect, parent: parent, policy: policy}
}

func (n *node[T]) hasChildren() bool { return n.tl != nil }

func (n *node[T]) isEmptyLeaf() bool { return !n.hasChildren() && len(n.items) == 0 }

func (n *node[T]) storeHere(h *itemHandle[T]) {
	n.items = append(n.items, h)
	h.owner = n
}

// createChildren splits rect at mid into four quadrants and wires up
// parent links. mid need not be the geometric center (the bulk loader
// passes a Morton median); it must lie within rect.
func (n *node[T]) createChildren(mid Point) {
	left, top, right, bottom := n.rect.Left(), n.rect.Top(), n.rect.Right(), n.rect.Bottom()
	n.tl = newNode(Rectangle{X: left, Y: top, Width: mid.X - left, Height: mid.Y - top}, n, n.policy)
	n.tr = newNode(Rectangle{X: mid.X, Y: top, Width: right - mid.X, Height: mid.Y - top}, n, n.policy)
	n.bl = newNode(Rectangle{X: left, Y: mid.Y, Width: mid.X - left, Height: bottom - mid.Y}, n, n.policy)
	n.br = newNode(Rectangle{X: mid.X, Y: mid.Y, Width: right - mid.X, Height: bottom - mid.Y}, n, n.policy)
}

// subdivideAt creates children at an explicit midpoint, used by the bulk
// loader which has already validated the range/area thresholds.
func (n *node[T]) subdivideAt(mid Point) {
	n.createChildren(mid)
}

// subdivideAuto splits at the node's geometric center, declining (leaving
// the node a leaf) if the resulting area would be degenerate.
func (n *node[T]) subdivideAuto() bool {
	if !validSubdivisionArea(n.rect) {
		return false
	}
	n.createChildren(n.rect.Center())
	return true
}

// destinationChild returns the unique child whose rect contains item's
// footprint, or nil if item straddles the midpoint. A footprint lying
// exactly on the split lines is always treated as a straddle: the
// half-open child rects would otherwise admit it into tr/bl/br
// deterministically, which would silently violate the "midpoint items
// stay at the parent" rule.
func (n *node[T]) destinationChild(item T) *node[T] {
	if !n.hasChildren() {
		return nil
	}
	mid := Point{X: n.tl.rect.Right(), Y: n.tl.rect.Bottom()}
	if n.policy.StraddlesSplit(item, mid) {
		return nil
	}
	switch {
	case n.policy.NodeContainsItem(n.tl.rect, item):
		return n.tl
	case n.policy.NodeContainsItem(n.tr.rect, item):
		return n.tr
	case n.policy.NodeContainsItem(n.bl.rect, item):
		return n.bl
	case n.policy.NodeContainsItem(n.br.rect, item):
		return n.br
	default:
		return nil
	}
}

// redistributeExisting moves a freshly-subdivided leaf's own items down
// into the new children, leaving stragglers (items that cross the
// midpoint) at this level.
func (n *node[T]) redistributeExisting() {
	old := n.items
	n.items = nil
	for _, h := range old {
		if dest := n.destinationChild(h.data); dest != nil {
			dest.insert(h, true)
		} else {
			n.storeHere(h)
		}
	}
}

// insert places h at the deepest node that still contains its footprint,
// subdividing a full leaf when canSubdivide is true. The root accepts
// items whose footprint falls outside its own rectangle (the one
// exception to the containment invariant).
func (n *node[T]) insert(h *itemHandle[T], canSubdivide bool) {
	if !n.policy.NodeContainsItem(n.rect, h.data) {
		if n.parent == nil {
			n.storeHere(h)
			return
		}
		n.parent.insert(h, canSubdivide)
		return
	}
	if !n.hasChildren() {
		if len(n.items) < MaxItemsPerNode || !canSubdivide {
			n.storeHere(h)
			return
		}
		if !n.subdivideAuto() {
			// Degenerate geometry: keep growing flat rather than split.
			n.storeHere(h)
			return
		}
		n.redistributeExisting()
	}
	if dest := n.destinationChild(h.data); dest != nil {
		dest.insert(h, canSubdivide)
		return
	}
	n.storeHere(h)
}

// removeHandle removes h from this node's item list via swap-with-last.
// Returns false if h was not present.
func (n *node[T]) removeHandle(h *itemHandle[T]) bool {
	for i, v := range n.items {
		if v == h {
			last := len(n.items) - 1
			n.items[i] = n.items[last]
			n.items = n.items[:last]
			return true
		}
	}
	return false
}

// subtreeItemCount counts every handle reachable from n. The inner loop
// breaks early if an item's owner no longer matches n — belt-and-braces
// defense against a handle whose ownership changed mid-traversal; the
// behavior (not just the guard) is reproduced verbatim from the source.
func (n *node[T]) subtreeItemCount() int {
	count := 0
	for _, h := range n.items {
		if h.owner != n {
			break
		}
		count++
	}
	if n.hasChildren() {
		count += n.tl.subtreeItemCount() + n.tr.subtreeItemCount() + n.bl.subtreeItemCount() + n.br.subtreeItemCount()
	}
	return count
}

// harvestInto gathers every handle reachable from n, applying the same
// owner guard as subtreeItemCount.
func (n *node[T]) harvestInto(out *[]*itemHandle[T]) {
	for _, h := range n.items {
		if h.owner != n {
			break
		}
		*out = append(*out, h)
	}
	if n.hasChildren() {
		n.tl.harvestInto(out)
		n.tr.harvestInto(out)
		n.bl.harvestInto(out)
		n.br.harvestInto(out)
	}
}

func (n *node[T]) harvestAll() []*itemHandle[T] {
	var out []*itemHandle[T]
	n.harvestInto(&out)
	return out
}

// condenseThis collapses an underfull internal node. No-op (returns
// false) if n is already a leaf. Cases are tried in order; the first
// that applies determines the result.
func (n *node[T]) condenseThis() bool {
	if !n.hasChildren() {
		return false
	}

	total := n.subtreeItemCount()
	if total <= MaxItemsPerNode {
		handles := n.harvestAll()
		n.tl, n.tr, n.bl, n.br = nil, nil, nil, nil
		n.items = nil
		bulkAddToNode(n, handles, 0)
		return true
	}

	emptyKids := 0
	kids := [4]*node[T]{n.tl, n.tr, n.bl, n.br}
	for _, k := range kids {
		if k.isEmptyLeaf() {
			emptyKids++
		}
	}

	if emptyKids == 4 {
		n.tl, n.tr, n.bl, n.br = nil, nil, nil, nil
		return true
	}

	if emptyKids == 3 {
		var solo *node[T]
		for _, k := range kids {
			if !k.isEmptyLeaf() {
				solo = k
			}
		}
		n.tl, n.tr, n.bl, n.br = solo.tl, solo.tr, solo.bl, solo.br
		for _, gc := range [4]*node[T]{n.tl, n.tr, n.bl, n.br} {
			if gc != nil {
				gc.parent = n
			}
		}
		if len(n.items) == 0 {
			n.items = solo.items
			for _, h := range n.items {
				h.owner = n
			}
		} else {
			for _, h := range solo.items {
				n.items = append(n.items, h)
				h.owner = n
			}
		}
		return true
	}

	if emptyKids > 0 && total < MaxOptimizeDeletionReadd {
		handles := n.harvestAll()
		n.tl, n.tr, n.bl, n.br = nil, nil, nil, nil
		n.items = nil
		bulkAddToNode(n, handles, 0)
		return true
	}

	return false
}

// condenseUpwards walks up from start (the former owner of a just-removed
// handle), calling condenseThis on each internal ancestor until one
// declines to ascend. condenseThis is a no-op on a leaf, so if start
// itself is a leaf the walk begins at its parent.
func condenseUpwards[T any](start *node[T]) {
	cur := start
	if !cur.hasChildren() {
		cur = cur.parent
	}
	for cur != nil {
		if !cur.condenseThis() {
			return
		}
		cur = cur.parent
	}
}

// relocate moves h to the correct node after its footprint has changed,
// walking up to the first ancestor (root, at worst) whose rect still
// contains the new footprint, then back down to the deepest containing
// descendant, then condensing from the original owner upward.
func (n *node[T]) relocate(h *itemHandle[T]) {
	origOwner := n
	cur := origOwner
	for cur.parent != nil && !cur.policy.NodeContainsItem(cur.rect, h.data) {
		cur = cur.parent
	}
	dest := cur
	for dest.hasChildren() {
		child := dest.destinationChild(h.data)
		if child == nil {
			break
		}
		dest = child
	}
	if dest != origOwner {
		origOwner.removeHandle(h)
		dest.storeHere(h)
	}
	condenseUpwards(origOwner)
}

// --- Queries ---
// Every query shares the same three-way dispatch: a query that fully
// contains a node's rect dumps the whole subtree unconditionally; one
// that merely intersects filters local items and recurses; one that
// does neither prunes the subtree.

func (n *node[T]) dumpAll(out *[]T) {
	for _, h := range n.items {
		if h.owner != n {
			break
		}
		*out = append(*out, h.data)
	}
	if n.hasChildren() {
		n.tl.dumpAll(out)
		n.tr.dumpAll(out)
		n.bl.dumpAll(out)
		n.br.dumpAll(out)
	}
}

func (n *node[T]) queryCount(region Region) int {
	if n.policy.QueryContainsNode(region, n.rect) {
		return n.subtreeItemCount()
	}
	if !n.policy.QueryIntersectsNode(region, n.rect) {
		return 0
	}
	count := 0
	for _, h := range n.items {
		if n.policy.QueryIntersectsItem(region, h.data) {
			count++
		}
	}
	if n.hasChildren() {
		count += n.tl.queryCount(region) + n.tr.queryCount(region) + n.bl.queryCount(region) + n.br.queryCount(region)
	}
	return count
}

func (n *node[T]) queryList(region Region, out *[]T) {
	if n.policy.QueryContainsNode(region, n.rect) {
		n.dumpAll(out)
		return
	}
	if !n.policy.QueryIntersectsNode(region, n.rect) {
		return
	}
	for _, h := range n.items {
		if n.policy.QueryIntersectsItem(region, h.data) {
			*out = append(*out, h.data)
		}
	}
	if n.hasChildren() {
		n.tl.queryList(region, out)
		n.tr.queryList(region, out)
		n.bl.queryList(region, out)
		n.br.queryList(region, out)
	}
}

// queryVisit calls fn for every matching item until fn returns false.
// Returns false if fn ever requested a stop, true if traversal completed.
func (n *node[T]) queryVisit(region Region, fn func(item T) bool) bool {
	if n.policy.QueryContainsNode(region, n.rect) {
		return n.visitAll(fn)
	}
	if !n.policy.QueryIntersectsNode(region, n.rect) {
		return true
	}
	for _, h := range n.items {
		if n.policy.QueryIntersectsItem(region, h.data) {
			if !fn(h.data) {
				return false
			}
		}
	}
	if n.hasChildren() {
		if !n.tl.queryVisit(region, fn) {
			return false
		}
		if !n.tr.queryVisit(region, fn) {
			return false
		}
		if !n.bl.queryVisit(region, fn) {
			return false
		}
		if !n.br.queryVisit(region, fn) {
			return false
		}
	}
	return true
}

func (n *node[T]) visitAll(fn func(item T) bool) bool {
	for _, h := range n.items {
		if h.owner != n {
			break
		}
		if !fn(h.data) {
			return false
		}
	}
	if n.hasChildren() {
		if !n.tl.visitAll(fn) {
			return false
		}
		if !n.tr.visitAll(fn) {
			return false
		}
		if !n.bl.visitAll(fn) {
			return false
		}
		if !n.br.visitAll(fn) {
			return false
		}
	}
	return true
}

// queryVisitPayload is the zero-allocation visitor shape: payload carries
// caller-owned mutable state (e.g. a counter) instead of relying on a
// closure capture, matching the two callback shapes spec.md §4.2 calls
// for. Defined as a free function (not a method) because Go methods
// cannot introduce their own type parameters beyond the receiver's.
func queryVisitPayload[T, P any](n *node[T], region Region, payload *P, fn func(item T, payload *P)) {
	if n.policy.QueryContainsNode(region, n.rect) {
		visitAllPayload(n, payload, fn)
		return
	}
	if !n.policy.QueryIntersectsNode(region, n.rect) {
		return
	}
	for _, h := range n.items {
		if n.policy.QueryIntersectsItem(region, h.data) {
			fn(h.data, payload)
		}
	}
	if n.hasChildren() {
		queryVisitPayload(n.tl, region, payload, fn)
		queryVisitPayload(n.tr, region, payload, fn)
		queryVisitPayload(n.bl, region, payload, fn)
		queryVisitPayload(n.br, region, payload, fn)
	}
}

func visitAllPayload[T, P any](n *node[T], payload *P, fn func(item T, payload *P)) {
	for _, h := range n.items {
		if h.owner != n {
			break
		}
		fn(h.data, payload)
	}
	if n.hasChildren() {
		visitAllPayload(n.tl, payload, fn)
		visitAllPayload(n.tr, payload, fn)
		visitAllPayload(n.bl, payload, fn)
		visitAllPayload(n.br, payload, fn)
	}
}

// querySpan fills buf (up to its length) with matching items and returns
// the count written. Callers are expected to have sized buf via a prior
// Count call.
func (n *node[T]) querySpan(region Region, buf []T) int {
	written := 0
	n.queryVisit(region, func(item T) bool {
		if written >= len(buf) {
			return false
		}
		buf[written] = item
		written++
		return true
	})
	return written
}

// querySeq produces a lazy, resumable traversal using two explicit work
// stacks: one for nodes only partially overlapping the query ("mixed"),
// one for subtrees fully contained by it. A fully-contained subtree is
// always drained completely before mixed work resumes, so results are
// ordered consistently with the other query forms.
func (n *node[T]) querySeq(region Region) func(yield func(T) bool) {
	return func(yield func(T) bool) {
		mixed := []*node[T]{n}
		var full []*node[T]
		for len(full) > 0 || len(mixed) > 0 {
			if len(full) > 0 {
				cur := full[len(full)-1]
				full = full[:len(full)-1]
				for _, h := range cur.items {
					if h.owner != cur {
						break
					}
					if !yield(h.data) {
						return
					}
				}
				if cur.hasChildren() {
					full = append(full, cur.br, cur.bl, cur.tr, cur.tl)
				}
				continue
			}
			cur := mixed[len(mixed)-1]
			mixed = mixed[:len(mixed)-1]
			if n.policy.QueryContainsNode(region, cur.rect) {
				full = append(full, cur)
				continue
			}
			if !n.policy.QueryIntersectsNode(region, cur.rect) {
				continue
			}
			for _, h := range cur.items {
				if n.policy.QueryIntersectsItem(region, h.data) {
					if !yield(h.data) {
						return
					}
				}
			}
			if cur.hasChildren() {
				mixed = append(mixed, cur.br, cur.bl, cur.tr, cur.tl)
			}
		}
	}
}

func (n *node[T]) countInternalNodes() int {
	if !n.hasChildren() {
		return 0
	}
	return 1 + n.tl.countInternalNodes() + n.tr.countInternalNodes() + n.bl.countInternalNodes() + n.br.countInternalNodes()
}
