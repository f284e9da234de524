package quadtree

import "math"

// Point is a single-precision 2D coordinate.
type Point struct {
	X, Y float32
}

// Rectangle is an axis-aligned box given by its top-left corner and
// extents. Width and Height are expected to be non-negative.
type Rectangle struct {
	X, Y, Width, Height float32
}

func (r Rectangle) Left() float32   { return r.X }
func (r Rectangle) Right() float32  { return r.X + r.Width }
func (r Rectangle) Top() float32    { return r.Y }
func (r Rectangle) Bottom() float32 { return r.Y + r.Height }
func (r Rectangle) Area() float32   { return r.Width * r.Height }

func (r Rectangle) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ContainsPoint uses the half-open convention: x <= px < x+width, same on y.
func (r Rectangle) ContainsPoint(p Point) bool {
	return p.X >= r.Left() && p.X < r.Right() &&
		p.Y >= r.Top() && p.Y < r.Bottom()
}

// ContainsRect reports whether r fully covers other.
func (r Rectangle) ContainsRect(other Rectangle) bool {
	return other.Left() >= r.Left() && other.Right() <= r.Right() &&
		other.Top() >= r.Top() && other.Bottom() <= r.Bottom()
}

// IntersectsRect reports whether r and other overlap, following the same
// half-open edge convention as ContainsPoint (touching edges don't count).
func (r Rectangle) IntersectsRect(other Rectangle) bool {
	if r.Left() >= other.Right() {
		return false
	}
	if r.Right() <= other.Left() {
		return false
	}
	if r.Top() >= other.Bottom() {
		return false
	}
	if r.Bottom() <= other.Top() {
		return false
	}
	return true
}

// strictlyInside reports whether p lies inside r without touching any edge.
func strictlyInside(p Point, r Rectangle) bool {
	return p.X > r.Left() && p.X < r.Right() && p.Y > r.Top() && p.Y < r.Bottom()
}

// validSubdivisionArea refuses degenerate splits: too small or non-finite.
func validSubdivisionArea(r Rectangle) bool {
	area := float64(r.Area())
	if math.IsNaN(area) || math.IsInf(area, 0) {
		return false
	}
	return area >= 0.01
}

// Region is a query shape: either a rectangle or a single point. A point
// query never fully contains a node (a node has positive area) and is
// only ever tested via intersection.
type Region struct {
	isPoint bool
	rect    Rectangle
	point   Point
}

// RegionRect builds a rectangular query region.
func RegionRect(r Rectangle) Region {
	return Region{rect: r}
}

// RegionPoint builds a point query region.
func RegionPoint(p Point) Region {
	return Region{isPoint: true, point: p}
}
