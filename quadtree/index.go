package quadtree

import (
	"sync"
)

// Index is the top-level container: it owns the root node and a
// key→handle map for O(1) membership, removal, and relocation. T is the
// indexed item type; K is a comparable key extracted from T (for a
// pointer-shaped item, K can simply be T itself — identity survives
// in-place mutation of the pointee, which is what Move relies on).
type Index[T any, K comparable] struct {
	policy ShapePolicy[T]
	keyOf  func(T) K
	root   *node[T]
	byKey  map[K]*itemHandle[T]
}

// NewIndex creates an empty index over rootRect using policy to adapt
// the tree to T's footprint, and keyOf to extract a stable identity from
// each item.
func NewIndex[T any, K comparable](rootRect Rectangle, policy ShapePolicy[T], keyOf func(T) K) *Index[T, K] {
	return &Index[T, K]{
		policy: policy,
		keyOf:  keyOf,
		root:   newNode[T](rootRect, nil, policy),
		byKey:  make(map[K]*itemHandle[T]),
	}
}

// Add inserts item, failing if its key is already present.
func (idx *Index[T, K]) Add(item T) error {
	key := idx.keyOf(item)
	if _, exists := idx.byKey[key]; exists {
		return ErrDuplicateInsert
	}
	h := &itemHandle[T]{data: item}
	idx.byKey[key] = h
	idx.root.insert(h, true)
	return nil
}

// AddRange inserts items one at a time, stopping at the first duplicate.
func (idx *Index[T, K]) AddRange(items []T) error {
	for _, item := range items {
		if err := idx.Add(item); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes item by key, condensing the affected subtree. Reports
// whether the item was present.
func (idx *Index[T, K]) Remove(item T) bool {
	key := idx.keyOf(item)
	h, ok := idx.byKey[key]
	if !ok {
		return false
	}
	owner := h.owner
	owner.removeHandle(h)
	delete(idx.byKey, key)
	condenseUpwards(owner)
	return true
}

// Clear empties the index entirely.
func (idx *Index[T, K]) Clear() {
	idx.byKey = make(map[K]*itemHandle[T])
	idx.root.items = nil
	idx.root.tl, idx.root.tr, idx.root.bl, idx.root.br = nil, nil, nil, nil
}

// Contains reports whether item's key is present.
func (idx *Index[T, K]) Contains(item T) bool {
	_, ok := idx.byKey[idx.keyOf(item)]
	return ok
}

// Count returns the number of indexed items.
func (idx *Index[T, K]) Count() int {
	return len(idx.byKey)
}

// Move refreshes the stored snapshot for item's key and relocates its
// handle to match the new footprint. Reports whether the key was
// present. Callers typically mutate an item in place (item is a pointer
// or otherwise carries identity independent of its coordinates) and then
// call Move so the key lookup still succeeds.
func (idx *Index[T, K]) Move(item T) bool {
	h, ok := idx.byKey[idx.keyOf(item)]
	if !ok {
		return false
	}
	h.data = item
	h.owner.relocate(h)
	return true
}

// AddBulk builds a subtree from batch in one pass, optionally fanning
// subtree construction out to four goroutines per level for the top
// threadLevel levels of the recursion. Fails without modifying the index
// if the root already has children, or if batch contains a key already
// present.
func (idx *Index[T, K]) AddBulk(batch []T, threadLevel int) error {
	if idx.root.hasChildren() {
		return ErrBulkPreconditionViolated
	}
	seen := make(map[K]struct{}, len(batch))
	for _, item := range batch {
		key := idx.keyOf(item)
		if _, exists := idx.byKey[key]; exists {
			return ErrDuplicateInsert
		}
		if _, dup := seen[key]; dup {
			return ErrDuplicateInsert
		}
		seen[key] = struct{}{}
	}
	if len(batch)+len(idx.root.items) <= MaxItemsPerNode {
		return idx.AddRange(batch)
	}

	handles := make([]*itemHandle[T], 0, len(batch))
	for _, item := range batch {
		h := &itemHandle[T]{data: item}
		idx.byKey[idx.keyOf(item)] = h
		handles = append(handles, h)
	}
	bulkAddToNode(idx.root, handles, threadLevel)
	return nil
}

// RemoveAll removes every item matching pred. Removal from the tree is
// a two-phase sweep (remove each handle from its owner, then condense
// every affected level repeatedly until nothing changes); the map erase
// runs concurrently on a background goroutine that RemoveAll always
// awaits before returning, so the map and tree are guaranteed consistent
// at return. Reports whether anything was removed.
func (idx *Index[T, K]) RemoveAll(pred func(T) bool) bool {
	var matched []*itemHandle[T]
	for _, h := range idx.byKey {
		if pred(h.data) {
			matched = append(matched, h)
		}
	}
	if len(matched) == 0 {
		return false
	}

	owners := make(map[*node[T]]struct{}, len(matched))
	for _, h := range matched {
		h.owner.removeHandle(h)
		owners[h.owner] = struct{}{}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, h := range matched {
			delete(idx.byKey, idx.keyOf(h.data))
		}
	}()

	idx.sweepCondense(owners)
	wg.Wait()
	return true
}

// sweepCondense runs condenseThis level by level: each round visits the
// current frontier of touched nodes (promoting leaves to their parent,
// since condenseThis is a no-op on a leaf), collects the parents of
// every node that actually changed, and repeats until a round changes
// nothing.
func (idx *Index[T, K]) sweepCondense(frontier map[*node[T]]struct{}) {
	for len(frontier) > 0 {
		next := make(map[*node[T]]struct{})
		for n := range frontier {
			cur := n
			if !cur.hasChildren() {
				cur = cur.parent
			}
			if cur == nil {
				continue
			}
			if cur.condenseThis() && cur.parent != nil {
				next[cur.parent] = struct{}{}
			}
		}
		frontier = next
	}
}

// TreeStats returns (internalNodes, leafNodes), where leafNodes equals
// Count() — "leaf" here means "stored item", matching the source's own
// naming convention rather than "node with no children".
func (idx *Index[T, K]) TreeStats() (internalNodes, leafNodes int) {
	return idx.root.countInternalNodes(), idx.Count()
}

// QueryCount returns the number of items matching region.
func (idx *Index[T, K]) QueryCount(region Region) int {
	return idx.root.queryCount(region)
}

// QueryList returns every item matching region as a new slice.
func (idx *Index[T, K]) QueryList(region Region) []T {
	var out []T
	idx.root.queryList(region, &out)
	return out
}

// QueryVisit calls fn for every item matching region until fn returns
// false. Returns false if fn ever requested a stop.
func (idx *Index[T, K]) QueryVisit(region Region, fn func(item T) bool) bool {
	return idx.root.queryVisit(region, fn)
}

// QuerySpan fills buf (up to its length) with items matching region and
// returns the count written. Size buf via a prior QueryCount call.
func (idx *Index[T, K]) QuerySpan(region Region, buf []T) int {
	return idx.root.querySpan(region, buf)
}

// QuerySeq returns a lazy, resumable sequence over the items matching
// region, suitable for range-over-func (Go 1.23+).
func (idx *Index[T, K]) QuerySeq(region Region) func(yield func(T) bool) {
	return idx.root.querySeq(region)
}

// QueryVisitPayload is the zero-allocation visitor form: payload carries
// caller-owned mutable state (e.g. a running count) instead of relying
// on a closure capture. A free function, not a method, because Go
// methods cannot add type parameters beyond the receiver's.
func QueryVisitPayload[T any, K comparable, P any](idx *Index[T, K], region Region, payload *P, fn func(item T, payload *P)) {
	queryVisitPayload(idx.root, region, payload, fn)
}
