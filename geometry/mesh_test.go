package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeshValidation(t *testing.T) {
	t.Run("MismatchedBuffers", func(t *testing.T) {
		_, err := NewMesh(make([]float64, 9), make([]float64, 6))
		assert.Error(t, err)
	})
	t.Run("PartialTriangle", func(t *testing.T) {
		_, err := NewMesh(make([]float64, 6), make([]float64, 6))
		assert.Error(t, err)
	})
	t.Run("Valid", func(t *testing.T) {
		m, err := NewMesh(make([]float64, 18), make([]float64, 18))
		require.NoError(t, err)
		assert.Equal(t, 2, m.TriangleCount())
		assert.Equal(t, mgl64.Ident4(), m.Transform)
	})
}

func TestBoundsFollowTransform(t *testing.T) {
	m := NewBoxMesh(2, 4, 6)

	min, max := m.Bounds()
	assert.InDelta(t, -1, min.X(), 1e-9)
	assert.InDelta(t, -2, min.Y(), 1e-9)
	assert.InDelta(t, -3, min.Z(), 1e-9)
	assert.InDelta(t, 1, max.X(), 1e-9)
	assert.InDelta(t, 2, max.Y(), 1e-9)
	assert.InDelta(t, 3, max.Z(), 1e-9)

	m.Transform = Translate(10, 0, 0)
	min, max = m.Bounds()
	assert.InDelta(t, 9, min.X(), 1e-9)
	assert.InDelta(t, 11, max.X(), 1e-9)
}

func TestBakedResetsTransform(t *testing.T) {
	m := NewBoxMesh(1, 1, 1)
	m.Transform = Translate(5, 0, 0)

	baked := m.Baked()
	assert.Equal(t, mgl64.Ident4(), baked.Transform)

	min, max := baked.Bounds()
	assert.InDelta(t, 4.5, min.X(), 1e-9)
	assert.InDelta(t, 5.5, max.X(), 1e-9)

	// the original keeps its transform and buffers
	assert.Equal(t, Translate(5, 0, 0), m.Transform)
	origMin, _ := m.Bounds()
	assert.InDelta(t, 4.5, origMin.X(), 1e-9)
}

func TestMergeBakesInputs(t *testing.T) {
	a := NewBoxMesh(1, 1, 1)
	b := NewBoxMesh(1, 1, 1)
	b.Transform = Translate(3, 0, 0)

	merged := Merge(a, b)
	assert.Equal(t, a.TriangleCount()+b.TriangleCount(), merged.TriangleCount())
	assert.Equal(t, mgl64.Ident4(), merged.Transform)

	min, max := merged.Bounds()
	assert.InDelta(t, -0.5, min.X(), 1e-9)
	assert.InDelta(t, 3.5, max.X(), 1e-9)
}

func TestApplyMatrixNormalsStayUnit(t *testing.T) {
	m := NewBoxMesh(1, 1, 1)
	m.ApplyMatrix(Scale(2, 1, 0.5))

	for i := 0; i+2 < len(m.Normals); i += 3 {
		n := mgl64.Vec3{m.Normals[i], m.Normals[i+1], m.Normals[i+2]}
		assert.InDelta(t, 1, n.Len(), 1e-9)
	}
}

func TestRotateAxis(t *testing.T) {
	testCases := []struct {
		name     string
		axis     string
		angle    float64
		point    mgl64.Vec3
		expected mgl64.Vec3
	}{
		{"XQuarter", "x", 90, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}},
		{"YQuarter", "y", 90, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}},
		{"ZQuarter", "z", 90, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}},
		{"DefaultIsZ", "", 180, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{-1, 0, 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rotated := RotateAxis(tc.axis, tc.angle).Mul4x1(tc.point.Vec4(1)).Vec3()
			for axis := 0; axis < 3; axis++ {
				assert.InDelta(t, tc.expected[axis], rotated[axis], 1e-9)
			}
		})
	}
}
