package scene

import (
	"encoding/json"

	"github.com/Bitbloq/bitbloq/geometry"
)

// TypeCube is the JSON type tag of cube objects.
const TypeCube = "Cube"

// CubeParams are the cube dimensions: width on x, depth on y, height on z.
type CubeParams struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

func (p CubeParams) clamped() CubeParams {
	return CubeParams{
		Width:  clampDimension(p.Width),
		Height: clampDimension(p.Height),
		Depth:  clampDimension(p.Depth),
	}
}

// Cube is a parametric cuboid.
type Cube struct {
	primitive
	params CubeParams
}

// NewCube creates a cube with the given parameters.
func NewCube(params CubeParams, ops []Operation, view ViewOptions) *Cube {
	c := &Cube{
		primitive: primitive{common: newCommon(TypeCube, ops, view)},
		params:    params,
	}
	c.shape = c
	return c
}

// Parameters returns the cube dimensions as entered.
func (c *Cube) Parameters() CubeParams { return c.params }

// SetParameters replaces the cube dimensions, scheduling a mesh rebuild when
// they changed.
func (c *Cube) SetParameters(params CubeParams) {
	if params == c.params {
		return
	}
	c.params = params
	c.markDirty()
}

func (c *Cube) buildMesh() *geometry.Mesh {
	p := c.params.clamped()
	return geometry.NewBoxMesh(p.Width, p.Depth, p.Height)
}

// ToJSON implements Object.
func (c *Cube) ToJSON() *ObjectJSON {
	j := c.baseJSON()
	j.Parameters, _ = json.Marshal(c.params)
	return j
}

// UpdateFromJSON implements Object.
func (c *Cube) UpdateFromJSON(j *ObjectJSON) error {
	var params CubeParams
	if err := unmarshalParams(j, &params); err != nil {
		return err
	}
	c.SetParameters(params)
	c.updateBaseFromJSON(j)
	return nil
}

// Clone implements Object.
func (c *Cube) Clone() Object {
	return NewCube(c.params, c.operations, c.viewOptions)
}
