package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBoxMesh(t *testing.T) {
	m := NewBoxMesh(10, 20, 30)
	assert.Equal(t, 12, m.TriangleCount())

	min, max := m.Bounds()
	assert.InDelta(t, 10, max.X()-min.X(), 1e-9)
	assert.InDelta(t, 20, max.Y()-min.Y(), 1e-9)
	assert.InDelta(t, 30, max.Z()-min.Z(), 1e-9)
}

func TestNewSphereMesh(t *testing.T) {
	m := NewSphereMesh(5, 16, 16)

	// pole stacks emit triangles, the rest emit quads
	assert.Equal(t, 16*2+16*14*2, m.TriangleCount())

	min, max := m.Bounds()
	assert.InDelta(t, -5, min.Z(), 1e-9)
	assert.InDelta(t, 5, max.Z(), 1e-9)
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		r := math.Sqrt(m.Vertices[i]*m.Vertices[i] +
			m.Vertices[i+1]*m.Vertices[i+1] +
			m.Vertices[i+2]*m.Vertices[i+2])
		assert.InDelta(t, 5, r, 1e-9)
	}
}

func TestNewCylinderMesh(t *testing.T) {
	m := NewCylinderMesh(3, 3, 8, 20)
	// one side quad plus two cap triangles per segment
	assert.Equal(t, 20*4, m.TriangleCount())

	min, max := m.Bounds()
	assert.InDelta(t, -4, min.Z(), 1e-9)
	assert.InDelta(t, 4, max.Z(), 1e-9)
	assert.InDelta(t, 3, max.X(), 1e-9)
}

func TestNewCylinderMeshCone(t *testing.T) {
	m := NewCylinderMesh(4, 1, 6, 12)
	min, max := m.Bounds()
	assert.InDelta(t, -4, min.X(), 1e-9)
	assert.InDelta(t, 4, max.X(), 1e-9)
	assert.InDelta(t, 6, max.Z()-min.Z(), 1e-9)
}

func TestNewPrismMesh(t *testing.T) {
	// a square prism with side 2 has a circumradius of sqrt(2)
	m := NewPrismMesh(4, 2, 5)
	assert.Equal(t, 4*4, m.TriangleCount())

	min, max := m.Bounds()
	assert.InDelta(t, 5, max.Z()-min.Z(), 1e-9)
	assert.InDelta(t, math.Sqrt2, max.X(), 1e-9)
}

func TestDegenerateSegmentsClamped(t *testing.T) {
	assert.NotZero(t, NewSphereMesh(1, 1, 1).TriangleCount())
	assert.NotZero(t, NewCylinderMesh(1, 1, 1, 0).TriangleCount())
	assert.NotZero(t, NewPrismMesh(0, 1, 1).TriangleCount())
}
