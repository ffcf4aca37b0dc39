package scene

import (
	"encoding/json"

	"github.com/Bitbloq/bitbloq/geometry"
)

// TypePrism is the JSON type tag of prism objects.
const TypePrism = "Prism"

// PrismParams parameterize a right prism with a regular polygonal base.
type PrismParams struct {
	Sides  int     `json:"sides"`
	Length float64 `json:"length"` // base side length
	Height float64 `json:"height"`
}

// Prism is a parametric right prism along the z axis.
type Prism struct {
	primitive
	params PrismParams
}

// NewPrism creates a prism with the given parameters.
func NewPrism(params PrismParams, ops []Operation, view ViewOptions) *Prism {
	p := &Prism{
		primitive: primitive{common: newCommon(TypePrism, ops, view)},
		params:    params,
	}
	p.shape = p
	return p
}

// Parameters returns the prism parameters as entered.
func (p *Prism) Parameters() PrismParams { return p.params }

// SetParameters replaces the prism parameters, scheduling a mesh rebuild
// when they changed.
func (p *Prism) SetParameters(params PrismParams) {
	if params == p.params {
		return
	}
	p.params = params
	p.markDirty()
}

func (p *Prism) buildMesh() *geometry.Mesh {
	sides := p.params.Sides
	if sides < 3 {
		sides = 3
	}
	return geometry.NewPrismMesh(sides, clampDimension(p.params.Length), clampDimension(p.params.Height))
}

// ToJSON implements Object.
func (p *Prism) ToJSON() *ObjectJSON {
	j := p.baseJSON()
	j.Parameters, _ = json.Marshal(p.params)
	return j
}

// UpdateFromJSON implements Object.
func (p *Prism) UpdateFromJSON(j *ObjectJSON) error {
	var params PrismParams
	if err := unmarshalParams(j, &params); err != nil {
		return err
	}
	p.SetParameters(params)
	p.updateBaseFromJSON(j)
	return nil
}

// Clone implements Object.
func (p *Prism) Clone() Object {
	return NewPrism(p.params, p.operations, p.viewOptions)
}
