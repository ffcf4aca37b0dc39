package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Primitive builders. All solids are centered at the local origin with the
// vertical dimension on the z axis: width maps to x, depth to y, height to z.

type meshBuilder struct {
	vertices []float64
}

func (b *meshBuilder) triangle(a, bb, c mgl64.Vec3) {
	b.vertices = append(b.vertices,
		a.X(), a.Y(), a.Z(),
		bb.X(), bb.Y(), bb.Z(),
		c.X(), c.Y(), c.Z(),
	)
}

func (b *meshBuilder) quad(a, bb, c, d mgl64.Vec3) {
	b.triangle(a, bb, c)
	b.triangle(a, c, d)
}

func (b *meshBuilder) mesh() *Mesh {
	m := &Mesh{Vertices: b.vertices, Transform: mgl64.Ident4()}
	m.RecomputeNormals()
	return m
}

// NewBoxMesh builds a closed cuboid of the given width (x), depth (y) and
// height (z).
func NewBoxMesh(width, depth, height float64) *Mesh {
	x, y, z := width/2, depth/2, height/2
	b := &meshBuilder{}

	// +z and -z faces
	b.quad(mgl64.Vec3{-x, -y, z}, mgl64.Vec3{x, -y, z}, mgl64.Vec3{x, y, z}, mgl64.Vec3{-x, y, z})
	b.quad(mgl64.Vec3{-x, -y, -z}, mgl64.Vec3{-x, y, -z}, mgl64.Vec3{x, y, -z}, mgl64.Vec3{x, -y, -z})
	// +y and -y faces
	b.quad(mgl64.Vec3{-x, y, -z}, mgl64.Vec3{-x, y, z}, mgl64.Vec3{x, y, z}, mgl64.Vec3{x, y, -z})
	b.quad(mgl64.Vec3{-x, -y, -z}, mgl64.Vec3{x, -y, -z}, mgl64.Vec3{x, -y, z}, mgl64.Vec3{-x, -y, z})
	// +x and -x faces
	b.quad(mgl64.Vec3{x, -y, -z}, mgl64.Vec3{x, y, -z}, mgl64.Vec3{x, y, z}, mgl64.Vec3{x, -y, z})
	b.quad(mgl64.Vec3{-x, -y, -z}, mgl64.Vec3{-x, -y, z}, mgl64.Vec3{-x, y, z}, mgl64.Vec3{-x, y, -z})

	return b.mesh()
}

// NewSphereMesh builds a closed latitude/longitude sphere with the given
// number of slices around the z axis and stacks from pole to pole.
func NewSphereMesh(radius float64, slices, stacks int) *Mesh {
	if slices < 3 {
		slices = 3
	}
	if stacks < 2 {
		stacks = 2
	}
	point := func(stack, slice int) mgl64.Vec3 {
		theta := math.Pi * float64(stack) / float64(stacks)
		phi := 2 * math.Pi * float64(slice) / float64(slices)
		return mgl64.Vec3{
			radius * math.Sin(theta) * math.Cos(phi),
			radius * math.Sin(theta) * math.Sin(phi),
			radius * math.Cos(theta),
		}
	}

	b := &meshBuilder{}
	for stack := 0; stack < stacks; stack++ {
		for slice := 0; slice < slices; slice++ {
			p00 := point(stack, slice)
			p01 := point(stack, slice+1)
			p10 := point(stack+1, slice)
			p11 := point(stack+1, slice+1)
			switch stack {
			case 0:
				b.triangle(p00, p10, p11)
			case stacks - 1:
				b.triangle(p00, p10, p01)
			default:
				b.quad(p00, p10, p11, p01)
			}
		}
	}
	return b.mesh()
}

// NewCylinderMesh builds a closed cylinder (or cone when the radii differ)
// along the z axis. r0 is the bottom radius, r1 the top one.
func NewCylinderMesh(r0, r1, height float64, radialSegments int) *Mesh {
	if radialSegments < 3 {
		radialSegments = 3
	}
	z := height / 2
	ring := func(r, z float64, i int) mgl64.Vec3 {
		phi := 2 * math.Pi * float64(i) / float64(radialSegments)
		return mgl64.Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
	}

	b := &meshBuilder{}
	bottomCenter := mgl64.Vec3{0, 0, -z}
	topCenter := mgl64.Vec3{0, 0, z}
	for i := 0; i < radialSegments; i++ {
		b0, b1 := ring(r0, -z, i), ring(r0, -z, i+1)
		t0, t1 := ring(r1, z, i), ring(r1, z, i+1)
		b.quad(b0, b1, t1, t0)
		b.triangle(bottomCenter, b1, b0)
		b.triangle(topCenter, t0, t1)
	}
	return b.mesh()
}

// NewPrismMesh builds a closed right prism along the z axis whose base is a
// regular polygon with the given number of sides and side length.
func NewPrismMesh(sides int, sideLength, height float64) *Mesh {
	if sides < 3 {
		sides = 3
	}
	circumradius := sideLength / (2 * math.Sin(math.Pi/float64(sides)))
	return NewCylinderMesh(circumradius, circumradius, height, sides)
}
