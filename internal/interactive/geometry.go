package interactive

import "github.com/1broseidon/floatwm/internal/platform"

// DefaultMinSize is the smallest size an interactive resize may produce.
var DefaultMinSize = platform.Size{W: 80, H: 40}

// InferEdges picks resize edges from the quadrant of g that origin falls in.
// A point exactly on a center line contributes no edge on that axis, so a
// point at the exact center yields the empty set.
func InferEdges(g platform.Geometry, origin platform.Point) platform.Edges {
	halfw := g.Origin.X + int(g.Size.W)/2
	halfh := g.Origin.Y + int(g.Size.H)/2

	var edges platform.Edges
	switch {
	case origin.X < halfw:
		edges = edges.Union(platform.EdgesOf(platform.EdgeLeft))
	case origin.X > halfw:
		edges = edges.Union(platform.EdgesOf(platform.EdgeRight))
	}
	switch {
	case origin.Y < halfh:
		edges = edges.Union(platform.EdgesOf(platform.EdgeTop))
	case origin.Y > halfh:
		edges = edges.Union(platform.EdgesOf(platform.EdgeBottom))
	}
	return edges
}

// MoveGeometry translates g by (dx, dy) without changing its size.
func MoveGeometry(g platform.Geometry, dx, dy int) platform.Geometry {
	g.Origin.X += dx
	g.Origin.Y += dy
	return g
}

// ResizeGeometry drags the given edges of g by (dx, dy). Each axis is
// handled independently: when the candidate size on an axis falls below
// minSize, that axis keeps its prior size and origin for this event.
func ResizeGeometry(g platform.Geometry, edges platform.Edges, dx, dy int, minSize platform.Size) platform.Geometry {
	out := g

	if edge, ok := edges.Horizontal(); ok {
		delta := dx
		if edge == platform.EdgeLeft {
			delta = -dx
		}
		if w, ok := acceptLength(int64(g.Size.W)+int64(delta), minSize.W); ok {
			if edge == platform.EdgeLeft {
				out.Origin.X = g.Origin.X + int(int64(g.Size.W)-int64(w))
			}
			out.Size.W = w
		}
	}

	if edge, ok := edges.Vertical(); ok {
		delta := dy
		if edge == platform.EdgeTop {
			delta = -dy
		}
		if h, ok := acceptLength(int64(g.Size.H)+int64(delta), minSize.H); ok {
			if edge == platform.EdgeTop {
				out.Origin.Y = g.Origin.Y + int(int64(g.Size.H)-int64(h))
			}
			out.Size.H = h
		}
	}

	return out
}

// acceptLength reports whether candidate is a usable length, capping it at
// the largest uint32.
func acceptLength(candidate int64, minLen uint32) (uint32, bool) {
	if candidate < int64(minLen) {
		return 0, false
	}
	if candidate > int64(^uint32(0)) {
		return ^uint32(0), true
	}
	return uint32(candidate), true
}
