// Package geometry provides triangle meshes and transform math for the 3D
// scene core.
package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a triangle soup. Vertices and Normals are flat buffers with three
// floats per vertex and three vertices per triangle. Transform is the mesh
// placement; the buffers themselves stay in the local frame until the
// transform is baked in with ApplyMatrix.
type Mesh struct {
	Vertices  []float64
	Normals   []float64
	Transform mgl64.Mat4
}

// NewMesh creates a mesh with an identity transform.
// It returns an error if the buffers do not describe whole triangles.
func NewMesh(vertices, normals []float64) (*Mesh, error) {
	if len(vertices) != len(normals) {
		return nil, fmt.Errorf("geometry: vertex buffer length %d != normal buffer length %d",
			len(vertices), len(normals))
	}
	if len(vertices)%9 != 0 {
		return nil, fmt.Errorf("geometry: vertex buffer length %d is not a whole number of triangles",
			len(vertices))
	}
	return &Mesh{
		Vertices:  vertices,
		Normals:   normals,
		Transform: mgl64.Ident4(),
	}, nil
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Vertices) / 9
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	vertices := make([]float64, len(m.Vertices))
	copy(vertices, m.Vertices)
	normals := make([]float64, len(m.Normals))
	copy(normals, m.Normals)
	return &Mesh{Vertices: vertices, Normals: normals, Transform: m.Transform}
}

// ApplyMatrix bakes the given matrix into the vertex and normal buffers.
// Normals are transformed with the inverse transpose so non-uniform scaling
// keeps them orthogonal to their faces.
func (m *Mesh) ApplyMatrix(mat mgl64.Mat4) {
	normalMat := mat.Inv().Transpose()
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		v := mgl64.Vec4{m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2], 1}
		v = mat.Mul4x1(v)
		m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2] = v.X(), v.Y(), v.Z()

		n := mgl64.Vec4{m.Normals[i], m.Normals[i+1], m.Normals[i+2], 0}
		n = normalMat.Mul4x1(n)
		nv := n.Vec3()
		if l := nv.Len(); l > 0 {
			nv = nv.Mul(1 / l)
		}
		m.Normals[i], m.Normals[i+1], m.Normals[i+2] = nv.X(), nv.Y(), nv.Z()
	}
}

// Baked returns a copy of the mesh with Transform applied to the buffers and
// reset to identity.
func (m *Mesh) Baked() *Mesh {
	out := m.Clone()
	out.ApplyMatrix(m.Transform)
	out.Transform = mgl64.Ident4()
	return out
}

// Bounds returns the axis-aligned bounding box of the mesh in the frame
// defined by Transform.
func (m *Mesh) Bounds() (min, max mgl64.Vec3) {
	min = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		v := m.Transform.Mul4x1(mgl64.Vec4{m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2], 1})
		for axis := 0; axis < 3; axis++ {
			if v[axis] < min[axis] {
				min[axis] = v[axis]
			}
			if v[axis] > max[axis] {
				max[axis] = v[axis]
			}
		}
	}
	return min, max
}

// Merge concatenates the given meshes into a single mesh with an identity
// transform. Each input transform is baked into the output buffers.
func Merge(meshes ...*Mesh) *Mesh {
	out := &Mesh{Transform: mgl64.Ident4()}
	for _, m := range meshes {
		baked := m.Baked()
		out.Vertices = append(out.Vertices, baked.Vertices...)
		out.Normals = append(out.Normals, baked.Normals...)
	}
	return out
}

// RecomputeNormals replaces the normal buffer with flat per-face normals
// derived from the vertex buffer.
func (m *Mesh) RecomputeNormals() {
	m.Normals = make([]float64, len(m.Vertices))
	for i := 0; i+8 < len(m.Vertices); i += 9 {
		a := mgl64.Vec3{m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2]}
		b := mgl64.Vec3{m.Vertices[i+3], m.Vertices[i+4], m.Vertices[i+5]}
		c := mgl64.Vec3{m.Vertices[i+6], m.Vertices[i+7], m.Vertices[i+8]}
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		for j := 0; j < 3; j++ {
			m.Normals[i+j*3] = n.X()
			m.Normals[i+j*3+1] = n.Y()
			m.Normals[i+j*3+2] = n.Z()
		}
	}
}
