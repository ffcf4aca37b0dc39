package scene

import (
	"encoding/json"

	"github.com/Bitbloq/bitbloq/geometry"
)

// TypeSphere is the JSON type tag of sphere objects.
const TypeSphere = "Sphere"

// SphereParams parameterize a sphere.
type SphereParams struct {
	Radius float64 `json:"radius"`
}

// Sphere is a parametric sphere.
type Sphere struct {
	primitive
	params SphereParams
}

// NewSphere creates a sphere with the given parameters.
func NewSphere(params SphereParams, ops []Operation, view ViewOptions) *Sphere {
	s := &Sphere{
		primitive: primitive{common: newCommon(TypeSphere, ops, view)},
		params:    params,
	}
	s.shape = s
	return s
}

// Parameters returns the sphere parameters as entered.
func (s *Sphere) Parameters() SphereParams { return s.params }

// SetParameters replaces the sphere parameters, scheduling a mesh rebuild
// when they changed.
func (s *Sphere) SetParameters(params SphereParams) {
	if params == s.params {
		return
	}
	s.params = params
	s.markDirty()
}

func (s *Sphere) buildMesh() *geometry.Mesh {
	radius := clampDimension(s.params.Radius)
	segments := segmentsForRadius(radius)
	return geometry.NewSphereMesh(radius, segments, segments)
}

// ToJSON implements Object.
func (s *Sphere) ToJSON() *ObjectJSON {
	j := s.baseJSON()
	j.Parameters, _ = json.Marshal(s.params)
	return j
}

// UpdateFromJSON implements Object.
func (s *Sphere) UpdateFromJSON(j *ObjectJSON) error {
	var params SphereParams
	if err := unmarshalParams(j, &params); err != nil {
		return err
	}
	s.SetParameters(params)
	s.updateBaseFromJSON(j)
	return nil
}

// Clone implements Object.
func (s *Sphere) Clone() Object {
	return NewSphere(s.params, s.operations, s.viewOptions)
}
