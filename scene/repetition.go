package scene

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Bitbloq/bitbloq/geometry"
	"github.com/Bitbloq/bitbloq/solver"
)

// TypeRepetition is the JSON type tag of repetition objects.
const TypeRepetition = "RepetitionObject"

// Repetition kinds.
const (
	RepetitionCartesian = "cartesian"
	RepetitionPolar     = "polar"
)

// RepetitionParams describe how the original object is replicated. For the
// cartesian kind each instance is offset by (x, y, z) from the previous one;
// for the polar kind each instance is rotated by angle degrees around the
// given axis.
type RepetitionParams struct {
	Type  string  `json:"type"`
	Num   int     `json:"num"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Z     float64 `json:"z,omitempty"`
	Axis  string  `json:"axis,omitempty"`
	Angle float64 `json:"angle,omitempty"`
}

// Repetition replicates one original object a fixed number of times.
type Repetition struct {
	common
	params   RepetitionParams
	original Object
}

// NewRepetition creates a repetition of the given original.
func NewRepetition(params RepetitionParams, original Object, ops []Operation, view ViewOptions) *Repetition {
	return &Repetition{
		common:   newCommon(TypeRepetition, ops, view),
		params:   params,
		original: original,
	}
}

// Original returns the replicated object.
func (r *Repetition) Original() Object { return r.original }

// Parameters returns the repetition parameters.
func (r *Repetition) Parameters() RepetitionParams { return r.params }

// SetParameters replaces the repetition parameters, scheduling a mesh
// rebuild when they changed.
func (r *Repetition) SetParameters(params RepetitionParams) {
	if params == r.params {
		return
	}
	r.params = params
	r.markDirty()
}

// NeedsMeshUpdate implements Object. An edited original invalidates the
// instances even when the repetition itself was not touched.
func (r *Repetition) NeedsMeshUpdate() bool {
	return r.common.NeedsMeshUpdate() || r.original.NeedsMeshUpdate()
}

func (r *Repetition) instanceMatrix(i int) mgl64.Mat4 {
	switch r.params.Type {
	case RepetitionPolar:
		return geometry.RotateAxis(r.params.Axis, float64(i)*r.params.Angle)
	default:
		return geometry.Translate(float64(i)*r.params.X, float64(i)*r.params.Y, float64(i)*r.params.Z)
	}
}

func (r *Repetition) instanceCount() int {
	if r.params.Num < 1 {
		return 1
	}
	return r.params.Num
}

// Mesh merges all instances of the original, with the repetition's own
// operations on top.
func (r *Repetition) Mesh(ctx context.Context) (*geometry.Mesh, error) {
	if r.mesh == nil || r.meshDirty || r.original.NeedsMeshUpdate() {
		original, err := r.original.Mesh(ctx)
		if err != nil {
			return nil, err
		}
		meshes := make([]*geometry.Mesh, 0, r.instanceCount())
		for i := 0; i < r.instanceCount(); i++ {
			instance := original.Clone()
			instance.Transform = r.instanceMatrix(i).Mul4(original.Transform)
			meshes = append(meshes, instance)
		}
		merged := geometry.Merge(meshes...)
		merged.Transform = composeOperations(r.operations)
		r.mesh = merged
		r.meshDirty = false
		r.opsDirty = false
	} else if r.opsDirty {
		r.mesh.Transform = composeOperations(r.operations)
		r.opsDirty = false
	}
	return r.mesh, nil
}

// meshPayloads contributes one payload per instance so a parent compound's
// worker can union them before the boolean fold.
func (r *Repetition) meshPayloads(ctx context.Context) ([]solver.MeshPayload, error) {
	// settles the original's mesh and this repetition's dirty flags
	if _, err := r.Mesh(ctx); err != nil {
		return nil, err
	}
	original, err := r.original.Mesh(ctx)
	if err != nil {
		return nil, err
	}
	repTransform := composeOperations(r.operations)
	payloads := make([]solver.MeshPayload, 0, r.instanceCount())
	for i := 0; i < r.instanceCount(); i++ {
		p := meshPayload(original)
		p.World = [16]float64(repTransform.Mul4(r.instanceMatrix(i)).Mul4(original.Transform))
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// Group expands the repetition into a group of clones, one per instance,
// each carrying its placement as an absolute operation.
func (r *Repetition) Group() *Group {
	members := make([]Object, 0, r.instanceCount())
	for i := 0; i < r.instanceCount(); i++ {
		clone := r.original.Clone()
		switch r.params.Type {
		case RepetitionPolar:
			clone.AddOperations(Operation{
				Type:  OpRotation,
				Axis:  r.params.Axis,
				Angle: float64(i) * r.params.Angle,
			})
		default:
			clone.AddOperations(Operation{
				Type: OpTranslation,
				X:    float64(i) * r.params.X,
				Y:    float64(i) * r.params.Y,
				Z:    float64(i) * r.params.Z,
			})
		}
		members = append(members, clone)
	}
	return NewGroup(members, r.operations, r.viewOptions)
}

// ToJSON implements Object. The original travels as the single child.
func (r *Repetition) ToJSON() *ObjectJSON {
	j := r.baseJSON()
	j.Parameters, _ = json.Marshal(r.params)
	j.Children = []*ObjectJSON{r.original.ToJSON()}
	return j
}

// UpdateFromJSON implements Object.
func (r *Repetition) UpdateFromJSON(j *ObjectJSON) error {
	var params RepetitionParams
	if err := unmarshalParams(j, &params); err != nil {
		return err
	}
	if len(j.Children) == 1 && j.Children[0].ID == r.original.ID() {
		if err := r.original.UpdateFromJSON(j.Children[0]); err != nil {
			return err
		}
	}
	r.SetParameters(params)
	r.markDirty()
	r.updateBaseFromJSON(j)
	return nil
}

// Clone implements Object.
func (r *Repetition) Clone() Object {
	return NewRepetition(r.params, r.original.Clone(), r.operations, r.viewOptions)
}

func (r *Repetition) validate() error {
	switch r.params.Type {
	case RepetitionCartesian, RepetitionPolar:
		return nil
	default:
		return fmt.Errorf("scene: unknown repetition type %q", r.params.Type)
	}
}
