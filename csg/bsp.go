// Package csg implements boolean operations on closed triangle meshes using
// binary space partition trees.
package csg

import "github.com/go-gl/mathgl/mgl64"

// planeEpsilon is the tolerance used to classify points against a plane.
const planeEpsilon = 1e-5

const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = 3
)

type vertex struct {
	pos    mgl64.Vec3
	normal mgl64.Vec3
}

func (v vertex) flipped() vertex {
	return vertex{pos: v.pos, normal: v.normal.Mul(-1)}
}

func (v vertex) interpolate(other vertex, t float64) vertex {
	return vertex{
		pos:    v.pos.Add(other.pos.Sub(v.pos).Mul(t)),
		normal: v.normal.Add(other.normal.Sub(v.normal).Mul(t)),
	}
}

type plane struct {
	normal mgl64.Vec3
	w      float64
}

func newPlane(a, b, c mgl64.Vec3) (plane, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l == 0 {
		return plane{}, false
	}
	n = n.Mul(1 / l)
	return plane{normal: n, w: n.Dot(a)}, true
}

func (p plane) flipped() plane {
	return plane{normal: p.normal.Mul(-1), w: -p.w}
}

// splitPolygon classifies poly against the plane and appends it (or its
// pieces) to the matching output lists.
func (p plane) splitPolygon(poly polygon, coplanarFront, coplanarBack, frontList, backList *[]polygon) {
	polygonType := 0
	types := make([]int, len(poly.vertices))
	for i, v := range poly.vertices {
		t := p.normal.Dot(v.pos) - p.w
		vertexType := coplanar
		if t < -planeEpsilon {
			vertexType = back
		} else if t > planeEpsilon {
			vertexType = front
		}
		polygonType |= vertexType
		types[i] = vertexType
	}

	switch polygonType {
	case coplanar:
		if p.normal.Dot(poly.plane.normal) > 0 {
			*coplanarFront = append(*coplanarFront, poly)
		} else {
			*coplanarBack = append(*coplanarBack, poly)
		}
	case front:
		*frontList = append(*frontList, poly)
	case back:
		*backList = append(*backList, poly)
	case spanning:
		var f, b []vertex
		n := len(poly.vertices)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := poly.vertices[i], poly.vertices[j]
			if ti != back {
				f = append(f, vi)
			}
			if ti != front {
				b = append(b, vi)
			}
			if (ti | tj) == spanning {
				t := (p.w - p.normal.Dot(vi.pos)) / p.normal.Dot(vj.pos.Sub(vi.pos))
				v := vi.interpolate(vj, t)
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*frontList = append(*frontList, polygon{vertices: f, plane: poly.plane})
		}
		if len(b) >= 3 {
			*backList = append(*backList, polygon{vertices: b, plane: poly.plane})
		}
	}
}

type polygon struct {
	vertices []vertex
	plane    plane
}

func (p polygon) flipped() polygon {
	flipped := make([]vertex, len(p.vertices))
	for i, v := range p.vertices {
		flipped[len(p.vertices)-1-i] = v.flipped()
	}
	return polygon{vertices: flipped, plane: p.plane.flipped()}
}

// node is a BSP tree node holding the polygons coplanar with its splitting
// plane.
type node struct {
	plane       *plane
	front, back *node
	polygons    []polygon
}

func newNode(polygons []polygon) *node {
	n := &node{}
	n.build(polygons)
	return n
}

func (n *node) invert() {
	for i := range n.polygons {
		n.polygons[i] = n.polygons[i].flipped()
	}
	if n.plane != nil {
		p := n.plane.flipped()
		n.plane = &p
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes from the given list every polygon fragment inside
// this tree's solid.
func (n *node) clipPolygons(polygons []polygon) []polygon {
	if n.plane == nil {
		return append([]polygon(nil), polygons...)
	}
	var frontList, backList []polygon
	for _, p := range polygons {
		n.plane.splitPolygon(p, &frontList, &backList, &frontList, &backList)
	}
	if n.front != nil {
		frontList = n.front.clipPolygons(frontList)
	}
	if n.back != nil {
		backList = n.back.clipPolygons(backList)
	} else {
		backList = nil
	}
	return append(frontList, backList...)
}

func (n *node) clipTo(other *node) {
	n.polygons = other.clipPolygons(n.polygons)
	if n.front != nil {
		n.front.clipTo(other)
	}
	if n.back != nil {
		n.back.clipTo(other)
	}
}

func (n *node) allPolygons() []polygon {
	polygons := append([]polygon(nil), n.polygons...)
	if n.front != nil {
		polygons = append(polygons, n.front.allPolygons()...)
	}
	if n.back != nil {
		polygons = append(polygons, n.back.allPolygons()...)
	}
	return polygons
}

func (n *node) build(polygons []polygon) {
	if len(polygons) == 0 {
		return
	}
	if n.plane == nil {
		p := polygons[0].plane
		n.plane = &p
	}
	var frontList, backList []polygon
	for _, p := range polygons {
		n.plane.splitPolygon(p, &n.polygons, &n.polygons, &frontList, &backList)
	}
	if len(frontList) > 0 {
		if n.front == nil {
			n.front = &node{}
		}
		n.front.build(frontList)
	}
	if len(backList) > 0 {
		if n.back == nil {
			n.back = &node{}
		}
		n.back.build(backList)
	}
}
