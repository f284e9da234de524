package quadtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectangleContainsPointHalfOpen(t *testing.T) {
	r := Rectangle{X: 0, Y: 0, Width: 10, Height: 10}

	assert.True(t, r.ContainsPoint(Point{X: 0, Y: 0}), "min edge is inclusive")
	assert.True(t, r.ContainsPoint(Point{X: 9.999, Y: 9.999}))
	assert.False(t, r.ContainsPoint(Point{X: 10, Y: 5}), "max edge is exclusive")
	assert.False(t, r.ContainsPoint(Point{X: 5, Y: 10}), "max edge is exclusive")
	assert.False(t, r.ContainsPoint(Point{X: -0.001, Y: 5}))
}

func TestRectangleContainsRect(t *testing.T) {
	outer := Rectangle{X: 0, Y: 0, Width: 10, Height: 10}

	cases := []struct {
		name  string
		inner Rectangle
		want  bool
	}{
		{"fully inside", Rectangle{X: 1, Y: 1, Width: 2, Height: 2}, true},
		{"touches all edges", Rectangle{X: 0, Y: 0, Width: 10, Height: 10}, true},
		{"overhangs right", Rectangle{X: 5, Y: 5, Width: 10, Height: 1}, false},
		{"fully outside", Rectangle{X: 20, Y: 20, Width: 1, Height: 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, outer.ContainsRect(tc.inner))
		})
	}
}

func TestRectangleIntersectsRect(t *testing.T) {
	a := Rectangle{X: 0, Y: 0, Width: 10, Height: 10}

	cases := []struct {
		name string
		b    Rectangle
		want bool
	}{
		{"overlaps", Rectangle{X: 5, Y: 5, Width: 10, Height: 10}, true},
		{"disjoint right", Rectangle{X: 20, Y: 0, Width: 5, Height: 5}, false},
		{"touching edge only", Rectangle{X: 10, Y: 0, Width: 5, Height: 5}, false},
		{"contained", Rectangle{X: 2, Y: 2, Width: 1, Height: 1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.IntersectsRect(tc.b))
			assert.Equal(t, tc.want, tc.b.IntersectsRect(a), "intersection must be symmetric")
		})
	}
}

func TestValidSubdivisionArea(t *testing.T) {
	assert.True(t, validSubdivisionArea(Rectangle{Width: 10, Height: 10}))
	assert.False(t, validSubdivisionArea(Rectangle{Width: 0.05, Height: 0.05}), "area below 0.01 threshold")
	assert.False(t, validSubdivisionArea(Rectangle{Width: 0, Height: 10}))
}

func TestStrictlyInside(t *testing.T) {
	r := Rectangle{X: 0, Y: 0, Width: 10, Height: 10}
	assert.True(t, strictlyInside(Point{X: 5, Y: 5}, r))
	assert.False(t, strictlyInside(Point{X: 0, Y: 5}, r), "on the left edge")
	assert.False(t, strictlyInside(Point{X: 10, Y: 5}, r), "on the right edge")
}
