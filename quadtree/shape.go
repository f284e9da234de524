package quadtree

// ShapePolicy adapts the tree to a given item footprint: point-valued or
// rectangle-valued. Every geometric test the tree needs goes through one
// of these six operations.
type ShapePolicy[T any] interface {
	// MortonPoint returns a representative point used only for bulk-load
	// sorting. Any fixed, deterministic choice is acceptable.
	MortonPoint(item T) Point

	// NodeContainsItem reports whether item's footprint is fully inside rect.
	NodeContainsItem(rect Rectangle, item T) bool

	// QueryContainsNode reports whether query fully contains rect.
	QueryContainsNode(query Region, rect Rectangle) bool

	// QueryIntersectsNode reports whether query overlaps rect at all.
	QueryIntersectsNode(query Region, rect Rectangle) bool

	// QueryIntersectsItem is the final per-item filter for a node that
	// only partially overlaps the query.
	QueryIntersectsItem(query Region, item T) bool

	// StraddlesSplit reports whether item's footprint lies exactly on a
	// node's split lines (x==mid.X or y==mid.Y) and must therefore be
	// kept at that node rather than descend into a child, even though
	// the half-open child rects would otherwise admit it into one of
	// them deterministically.
	StraddlesSplit(item T, mid Point) bool
}

// PointShape adapts the tree to items whose footprint is a single point.
type PointShape[T any] struct {
	Extract func(item T) Point
}

// NewPointShape builds a PointShape from a point extractor.
func NewPointShape[T any](extract func(T) Point) *PointShape[T] {
	return &PointShape[T]{Extract: extract}
}

func (s *PointShape[T]) MortonPoint(item T) Point { return s.Extract(item) }

func (s *PointShape[T]) NodeContainsItem(rect Rectangle, item T) bool {
	return rect.ContainsPoint(s.Extract(item))
}

func (s *PointShape[T]) QueryContainsNode(query Region, rect Rectangle) bool {
	if query.isPoint {
		return false
	}
	return query.rect.ContainsRect(rect)
}

func (s *PointShape[T]) QueryIntersectsNode(query Region, rect Rectangle) bool {
	if query.isPoint {
		return rect.ContainsPoint(query.point)
	}
	return query.rect.IntersectsRect(rect)
}

func (s *PointShape[T]) QueryIntersectsItem(query Region, item T) bool {
	p := s.Extract(item)
	if query.isPoint {
		return p == query.point
	}
	return query.rect.ContainsPoint(p)
}

func (s *PointShape[T]) StraddlesSplit(item T, mid Point) bool {
	p := s.Extract(item)
	return p.X == mid.X || p.Y == mid.Y
}

// RectShape adapts the tree to items whose footprint is a rectangle.
type RectShape[T any] struct {
	Extract func(item T) Rectangle
}

// NewRectShape builds a RectShape from a rectangle extractor.
func NewRectShape[T any](extract func(T) Rectangle) *RectShape[T] {
	return &RectShape[T]{Extract: extract}
}

// MortonPoint uses the rectangle's top-left corner. Any fixed corner or
// the center would do; the top-left is simplest and deterministic.
func (s *RectShape[T]) MortonPoint(item T) Point {
	r := s.Extract(item)
	return Point{X: r.X, Y: r.Y}
}

func (s *RectShape[T]) NodeContainsItem(rect Rectangle, item T) bool {
	return rect.ContainsRect(s.Extract(item))
}

func (s *RectShape[T]) QueryContainsNode(query Region, rect Rectangle) bool {
	if query.isPoint {
		return false
	}
	return query.rect.ContainsRect(rect)
}

func (s *RectShape[T]) QueryIntersectsNode(query Region, rect Rectangle) bool {
	if query.isPoint {
		return rect.ContainsPoint(query.point)
	}
	return query.rect.IntersectsRect(rect)
}

func (s *RectShape[T]) QueryIntersectsItem(query Region, item T) bool {
	r := s.Extract(item)
	if query.isPoint {
		return r.ContainsPoint(query.point)
	}
	return query.rect.IntersectsRect(r)
}

// StraddlesSplit applies the same midpoint exception as PointShape to a
// degenerate rectangle with zero width and zero height, which is really a
// point in disguise (a zero-width or zero-height line is not covered);
// a rectangle with positive extent that crosses a split line already
// fails NodeContainsItem against every child and falls through to the
// parent on its own, so no further check is needed for it here.
func (s *RectShape[T]) StraddlesSplit(item T, mid Point) bool {
	r := s.Extract(item)
	return r.Width == 0 && r.Height == 0 && (r.X == mid.X || r.Y == mid.Y)
}
