// Package scene implements the 3D document model: parametric primitives,
// boolean compounds, groups and repetitions, and the scene graph that owns
// them.
package scene

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/Bitbloq/bitbloq/geometry"
)

// OperationType determines the transform operation kind.
type OperationType string

// Transform operation kinds.
const (
	OpTranslation OperationType = "translation"
	OpRotation    OperationType = "rotation"
	OpScale       OperationType = "scale"
)

// Operation is one transform record. Operations apply in array order;
// relative operations compose in the object's local frame, absolute ones in
// the world frame.
type Operation struct {
	Type     OperationType `json:"type"`
	X        float64       `json:"x,omitempty"`
	Y        float64       `json:"y,omitempty"`
	Z        float64       `json:"z,omitempty"`
	Axis     string        `json:"axis,omitempty"`
	Angle    float64       `json:"angle,omitempty"`
	Relative bool          `json:"relative,omitempty"`
}

func (op Operation) matrix() mgl64.Mat4 {
	switch op.Type {
	case OpTranslation:
		return geometry.Translate(op.X, op.Y, op.Z)
	case OpRotation:
		return geometry.RotateAxis(op.Axis, op.Angle)
	case OpScale:
		return geometry.Scale(op.X, op.Y, op.Z)
	default:
		return mgl64.Ident4()
	}
}

func composeOperations(ops []Operation) mgl64.Mat4 {
	m := mgl64.Ident4()
	for _, op := range ops {
		if op.Relative {
			m = m.Mul4(op.matrix())
		} else {
			m = op.matrix().Mul4(m)
		}
	}
	return m
}

// ViewOptions are the display attributes of an object.
type ViewOptions struct {
	Color       string `json:"color"`
	Visible     bool   `json:"visible"`
	Highlighted bool   `json:"highlighted"`
	Name        string `json:"name,omitempty"`
}

// DefaultViewOptions returns the attributes assigned to newly created
// objects.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{Color: "#ffffff", Visible: true}
}

// ObjectJSON is the persisted form of one scene object. Parameters are kept
// raw; each object variant decodes its own shape.
type ObjectJSON struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Operations  []Operation     `json:"operations"`
	ViewOptions ViewOptions     `json:"viewOptions"`
	Children    []*ObjectJSON   `json:"children,omitempty"`
}

// Object is a scene node.
type Object interface {
	ID() string
	Type() string
	ViewOptions() ViewOptions
	SetViewOptions(ViewOptions)
	Operations() []Operation
	AddOperations(...Operation)
	SetOperations([]Operation)
	NeedsMeshUpdate() bool

	// Mesh resolves the node's mesh with all recorded operations applied.
	// Repeated calls without intervening mutation return the same mesh.
	Mesh(ctx context.Context) (*geometry.Mesh, error)

	ToJSON() *ObjectJSON
	UpdateFromJSON(*ObjectJSON) error

	// Clone deep-copies the node, assigning fresh ids to the whole subtree.
	Clone() Object
}

// common carries the state shared by every object variant.
type common struct {
	id          string
	typeName    string
	operations  []Operation
	viewOptions ViewOptions

	mesh *geometry.Mesh
	// meshDirty forces a geometry rebuild; opsDirty only a placement update.
	meshDirty bool
	opsDirty  bool
}

func newCommon(typeName string, ops []Operation, view ViewOptions) common {
	return common{
		id:          uuid.NewString(),
		typeName:    typeName,
		operations:  append([]Operation(nil), ops...),
		viewOptions: view,
		meshDirty:   true,
	}
}

func (c *common) ID() string   { return c.id }
func (c *common) Type() string { return c.typeName }

func (c *common) setID(id string) {
	if id != "" {
		c.id = id
	}
}

func (c *common) ViewOptions() ViewOptions { return c.viewOptions }

func (c *common) SetViewOptions(view ViewOptions) { c.viewOptions = view }

func (c *common) Operations() []Operation {
	return append([]Operation(nil), c.operations...)
}

func (c *common) AddOperations(ops ...Operation) {
	if len(ops) == 0 {
		return
	}
	c.operations = append(c.operations, ops...)
	c.opsDirty = true
}

func (c *common) SetOperations(ops []Operation) {
	if reflect.DeepEqual(ops, c.operations) {
		return
	}
	c.operations = append([]Operation(nil), ops...)
	c.opsDirty = true
}

func (c *common) NeedsMeshUpdate() bool { return c.meshDirty || c.opsDirty }

func (c *common) markDirty() { c.meshDirty = true }

// baseJSON fills the fields shared by every variant.
func (c *common) baseJSON() *ObjectJSON {
	return &ObjectJSON{
		ID:          c.id,
		Type:        c.typeName,
		Operations:  c.Operations(),
		ViewOptions: c.viewOptions,
	}
}

func (c *common) updateBaseFromJSON(j *ObjectJSON) {
	c.SetOperations(j.Operations)
	c.viewOptions = j.ViewOptions
}
