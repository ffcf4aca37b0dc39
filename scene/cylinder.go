package scene

import (
	"encoding/json"

	"github.com/Bitbloq/bitbloq/geometry"
)

// TypeCylinder is the JSON type tag of cylinder objects.
const TypeCylinder = "Cylinder"

// CylinderParams parameterize a cylinder (a cone when the radii differ).
type CylinderParams struct {
	R0     float64 `json:"r0"` // bottom radius
	R1     float64 `json:"r1"` // top radius
	Height float64 `json:"height"`
}

// Cylinder is a parametric cylinder along the z axis.
type Cylinder struct {
	primitive
	params CylinderParams
}

// NewCylinder creates a cylinder with the given parameters.
func NewCylinder(params CylinderParams, ops []Operation, view ViewOptions) *Cylinder {
	c := &Cylinder{
		primitive: primitive{common: newCommon(TypeCylinder, ops, view)},
		params:    params,
	}
	c.shape = c
	return c
}

// Parameters returns the cylinder parameters as entered.
func (c *Cylinder) Parameters() CylinderParams { return c.params }

// SetParameters replaces the cylinder parameters, scheduling a mesh rebuild
// when they changed.
func (c *Cylinder) SetParameters(params CylinderParams) {
	if params == c.params {
		return
	}
	c.params = params
	c.markDirty()
}

func (c *Cylinder) buildMesh() *geometry.Mesh {
	r0 := clampDimension(c.params.R0)
	r1 := clampDimension(c.params.R1)
	height := clampDimension(c.params.Height)
	larger := r0
	if r1 > larger {
		larger = r1
	}
	return geometry.NewCylinderMesh(r0, r1, height, segmentsForRadius(larger))
}

// ToJSON implements Object.
func (c *Cylinder) ToJSON() *ObjectJSON {
	j := c.baseJSON()
	j.Parameters, _ = json.Marshal(c.params)
	return j
}

// UpdateFromJSON implements Object.
func (c *Cylinder) UpdateFromJSON(j *ObjectJSON) error {
	var params CylinderParams
	if err := unmarshalParams(j, &params); err != nil {
		return err
	}
	c.SetParameters(params)
	c.updateBaseFromJSON(j)
	return nil
}

// Clone implements Object.
func (c *Cylinder) Clone() Object {
	return NewCylinder(c.params, c.operations, c.viewOptions)
}
