package csg

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Bitbloq/bitbloq/geometry"
)

// Solid is an immutable boolean operand built from a mesh. Operations return
// new solids and leave their operands untouched.
type Solid struct {
	polygons []polygon
}

// FromMesh builds a solid from a mesh, baking the mesh transform into world
// space first. Degenerate triangles are dropped.
func FromMesh(m *geometry.Mesh) *Solid {
	baked := m.Baked()
	polygons := make([]polygon, 0, baked.TriangleCount())
	for i := 0; i+8 < len(baked.Vertices); i += 9 {
		var vs [3]vertex
		for j := 0; j < 3; j++ {
			vs[j] = vertex{
				pos:    mgl64.Vec3{baked.Vertices[i+j*3], baked.Vertices[i+j*3+1], baked.Vertices[i+j*3+2]},
				normal: mgl64.Vec3{baked.Normals[i+j*3], baked.Normals[i+j*3+1], baked.Normals[i+j*3+2]},
			}
		}
		p, ok := newPlane(vs[0].pos, vs[1].pos, vs[2].pos)
		if !ok {
			continue
		}
		polygons = append(polygons, polygon{vertices: vs[:], plane: p})
	}
	return &Solid{polygons: polygons}
}

// ToMesh triangulates the solid back into a mesh with an identity transform
// and flat per-face normals.
func (s *Solid) ToMesh() *geometry.Mesh {
	m := &geometry.Mesh{Transform: mgl64.Ident4()}
	for _, poly := range s.polygons {
		for i := 2; i < len(poly.vertices); i++ {
			for _, v := range []vertex{poly.vertices[0], poly.vertices[i-1], poly.vertices[i]} {
				m.Vertices = append(m.Vertices, v.pos.X(), v.pos.Y(), v.pos.Z())
			}
		}
	}
	m.RecomputeNormals()
	return m
}

// Union returns the solid covering both operands.
func (s *Solid) Union(other *Solid) *Solid {
	a := newNode(s.polygons)
	b := newNode(other.polygons)
	a.clipTo(b)
	b.clipTo(a)
	b.invert()
	b.clipTo(a)
	b.invert()
	a.build(b.allPolygons())
	return &Solid{polygons: a.allPolygons()}
}

// Subtract returns the part of the receiver outside the other operand.
func (s *Solid) Subtract(other *Solid) *Solid {
	a := newNode(s.polygons)
	b := newNode(other.polygons)
	a.invert()
	a.clipTo(b)
	b.clipTo(a)
	b.invert()
	b.clipTo(a)
	b.invert()
	a.build(b.allPolygons())
	a.invert()
	return &Solid{polygons: a.allPolygons()}
}

// Intersect returns the solid common to both operands.
func (s *Solid) Intersect(other *Solid) *Solid {
	a := newNode(s.polygons)
	b := newNode(other.polygons)
	a.invert()
	b.clipTo(a)
	b.invert()
	a.clipTo(b)
	b.clipTo(a)
	a.build(b.allPolygons())
	a.invert()
	return &Solid{polygons: a.allPolygons()}
}
