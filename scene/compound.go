package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Bitbloq/bitbloq/geometry"
	"github.com/Bitbloq/bitbloq/solver"
)

// JSON type tags of the compound variants.
const (
	TypeUnion        = "Union"
	TypeDifference   = "Difference"
	TypeIntersection = "Intersection"
)

// ErrCompoundOperation is the generic boolean-engine failure. Retrying is
// only meaningful after the input geometry changes.
var ErrCompoundOperation = errors.New("compound object error")

// ErrNoSolver is reported at construction time when no boolean engine is
// configured.
var ErrNoSolver = errors.New("scene: compound objects require a solver")

// payloadContributor lets multi-mesh children (groups, repetitions) hand
// each member mesh to the solver separately; the worker unions them before
// the boolean fold.
type payloadContributor interface {
	meshPayloads(ctx context.Context) ([]solver.MeshPayload, error)
}

type pendingMesh struct {
	done chan struct{}
	mesh *geometry.Mesh
	err  error
}

// Compound computes one boolean operation over its children. Children are
// ordered; Difference and Intersection fold left to right over them.
type Compound struct {
	common
	operation solver.Operation
	children  []Object
	solver    solver.Solver
	factory   *Factory

	mu      sync.Mutex
	pending *pendingMesh
}

func newCompound(typeName string, op solver.Operation, children []Object, ops []Operation, view ViewOptions, factory *Factory) (*Compound, error) {
	if factory == nil || factory.Solver == nil {
		return nil, ErrNoSolver
	}
	return &Compound{
		common:    newCommon(typeName, ops, view),
		operation: op,
		children:  append([]Object(nil), children...),
		solver:    factory.Solver,
		factory:   factory,
	}, nil
}

// NewUnion creates a union of the given children.
func NewUnion(children []Object, ops []Operation, view ViewOptions, factory *Factory) (*Compound, error) {
	return newCompound(TypeUnion, solver.OpUnion, children, ops, view, factory)
}

// NewDifference creates a difference: the first child minus the rest, in
// order.
func NewDifference(children []Object, ops []Operation, view ViewOptions, factory *Factory) (*Compound, error) {
	return newCompound(TypeDifference, solver.OpDifference, children, ops, view, factory)
}

// NewIntersection creates an intersection of the given children, folded in
// order.
func NewIntersection(children []Object, ops []Operation, view ViewOptions, factory *Factory) (*Compound, error) {
	return newCompound(TypeIntersection, solver.OpIntersection, children, ops, view, factory)
}

// Children returns the child list in declared order.
func (c *Compound) Children() []Object {
	return append([]Object(nil), c.children...)
}

// NeedsMeshUpdate implements Object. A mutated child invalidates the boolean
// result even when the compound itself was not touched.
func (c *Compound) NeedsMeshUpdate() bool {
	return c.common.NeedsMeshUpdate() || childrenNeedUpdate(c.children)
}

func childrenNeedUpdate(children []Object) bool {
	for _, child := range children {
		if child.NeedsMeshUpdate() {
			return true
		}
	}
	return false
}

// AddChild appends a child, scheduling a recomputation.
func (c *Compound) AddChild(child Object) {
	c.children = append(c.children, child)
	c.markDirty()
}

// SetChildren replaces the child list, scheduling a recomputation.
func (c *Compound) SetChildren(children []Object) {
	c.children = append([]Object(nil), children...)
	c.markDirty()
}

// Mesh resolves the boolean result. Only one computation is in flight per
// compound: concurrent calls while one is pending await the same result.
func (c *Compound) Mesh(ctx context.Context) (*geometry.Mesh, error) {
	c.mu.Lock()
	if p := c.pending; p != nil {
		c.mu.Unlock()
		select {
		case <-p.done:
			return p.mesh, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.mesh != nil && !c.meshDirty && !childrenNeedUpdate(c.children) {
		if c.opsDirty {
			c.mesh.Transform = composeOperations(c.operations)
			c.opsDirty = false
		}
		mesh := c.mesh
		c.mu.Unlock()
		return mesh, nil
	}
	p := &pendingMesh{done: make(chan struct{})}
	c.pending = p
	c.mu.Unlock()

	mesh, err := c.compute(ctx)

	c.mu.Lock()
	if err == nil {
		c.mesh = mesh
		c.meshDirty = false
		c.opsDirty = false
	}
	p.mesh, p.err = mesh, err
	c.pending = nil
	c.mu.Unlock()
	close(p.done)

	return mesh, err
}

func (c *Compound) compute(ctx context.Context) (*geometry.Mesh, error) {
	if len(c.children) == 0 {
		return nil, fmt.Errorf("%w: no children", ErrCompoundOperation)
	}

	// Children resolve in declared order before dispatch; the solver folds
	// them in the same order.
	req := &solver.Request{Op: c.operation}
	for _, child := range c.children {
		payloads, err := childPayloads(ctx, child)
		if err != nil {
			return nil, err
		}
		req.Children = append(req.Children, solver.ChildPayload{Meshes: payloads})
	}

	res, err := c.solver.Solve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompoundOperation, err)
	}
	if res.Status != solver.StatusOK {
		return nil, ErrCompoundOperation
	}

	mesh, err := geometry.NewMesh(res.Vertices, res.Normals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompoundOperation, err)
	}
	mesh.Transform = composeOperations(c.operations)
	return mesh, nil
}

func childPayloads(ctx context.Context, child Object) ([]solver.MeshPayload, error) {
	if contributor, ok := child.(payloadContributor); ok {
		return contributor.meshPayloads(ctx)
	}
	mesh, err := child.Mesh(ctx)
	if err != nil {
		return nil, err
	}
	return []solver.MeshPayload{meshPayload(mesh)}, nil
}

func meshPayload(mesh *geometry.Mesh) solver.MeshPayload {
	return solver.MeshPayload{
		Vertices: mesh.Vertices,
		Normals:  mesh.Normals,
		World:    [16]float64(mesh.Transform),
		Local:    [16]float64(mgl64.Ident4()),
	}
}

// ToJSON implements Object.
func (c *Compound) ToJSON() *ObjectJSON {
	j := c.baseJSON()
	for _, child := range c.children {
		j.Children = append(j.Children, child.ToJSON())
	}
	return j
}

// UpdateFromJSON implements Object. Children are rebuilt from their JSON
// form.
func (c *Compound) UpdateFromJSON(j *ObjectJSON) error {
	children := make([]Object, 0, len(j.Children))
	for _, childJSON := range j.Children {
		child, err := c.factory.NewFromJSON(childJSON)
		if err != nil {
			return err
		}
		children = append(children, child)
	}
	c.SetChildren(children)
	c.updateBaseFromJSON(j)
	return nil
}

// Clone implements Object.
func (c *Compound) Clone() Object {
	children := make([]Object, len(c.children))
	for i, child := range c.children {
		children[i] = child.Clone()
	}
	clone, _ := newCompound(c.typeName, c.operation, children, c.operations, c.viewOptions, c.factory)
	return clone
}
