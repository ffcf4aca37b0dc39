package scene

import (
	"context"

	"github.com/Bitbloq/bitbloq/geometry"
	"github.com/Bitbloq/bitbloq/solver"
)

// TypeGroup is the JSON type tag of group objects.
const TypeGroup = "ObjectsGroup"

// Group aggregates children without a boolean operation; its mesh is the
// plain concatenation of the member meshes.
type Group struct {
	common
	children []Object
}

// NewGroup creates a group over the given members.
func NewGroup(children []Object, ops []Operation, view ViewOptions) *Group {
	return &Group{
		common:   newCommon(TypeGroup, ops, view),
		children: append([]Object(nil), children...),
	}
}

// Children returns the member list in declared order.
func (g *Group) Children() []Object {
	return append([]Object(nil), g.children...)
}

// UnGroup returns the members; the scene uses it to promote them back to
// roots.
func (g *Group) UnGroup() []Object {
	return g.Children()
}

// NeedsMeshUpdate implements Object. A mutated member invalidates the merged
// mesh even when the group itself was not touched.
func (g *Group) NeedsMeshUpdate() bool {
	return g.common.NeedsMeshUpdate() || childrenNeedUpdate(g.children)
}

// Mesh merges the member meshes, with the group's own operations on top.
func (g *Group) Mesh(ctx context.Context) (*geometry.Mesh, error) {
	if g.mesh == nil || g.meshDirty || childrenNeedUpdate(g.children) {
		meshes := make([]*geometry.Mesh, 0, len(g.children))
		for _, child := range g.children {
			m, err := child.Mesh(ctx)
			if err != nil {
				return nil, err
			}
			meshes = append(meshes, m)
		}
		merged := geometry.Merge(meshes...)
		merged.Transform = composeOperations(g.operations)
		g.mesh = merged
		g.meshDirty = false
		g.opsDirty = false
	} else if g.opsDirty {
		g.mesh.Transform = composeOperations(g.operations)
		g.opsDirty = false
	}
	return g.mesh, nil
}

// meshPayloads contributes one payload per member so a parent compound's
// worker can union them before the boolean fold.
func (g *Group) meshPayloads(ctx context.Context) ([]solver.MeshPayload, error) {
	// settles the member meshes and this group's dirty flags
	if _, err := g.Mesh(ctx); err != nil {
		return nil, err
	}
	groupTransform := composeOperations(g.operations)
	payloads := make([]solver.MeshPayload, 0, len(g.children))
	for _, child := range g.children {
		m, err := child.Mesh(ctx)
		if err != nil {
			return nil, err
		}
		p := meshPayload(m)
		p.World = [16]float64(groupTransform.Mul4(m.Transform))
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// ToJSON implements Object.
func (g *Group) ToJSON() *ObjectJSON {
	j := g.baseJSON()
	for _, child := range g.children {
		j.Children = append(j.Children, child.ToJSON())
	}
	return j
}

// UpdateFromJSON implements Object. Member updates are applied through the
// members' own UpdateFromJSON by id; structural changes go through the
// scene, not here.
func (g *Group) UpdateFromJSON(j *ObjectJSON) error {
	byID := make(map[string]Object, len(g.children))
	for _, child := range g.children {
		byID[child.ID()] = child
	}
	for _, childJSON := range j.Children {
		if child, ok := byID[childJSON.ID]; ok {
			if err := child.UpdateFromJSON(childJSON); err != nil {
				return err
			}
		}
	}
	g.markDirty()
	g.updateBaseFromJSON(j)
	return nil
}

// Clone implements Object.
func (g *Group) Clone() Object {
	children := make([]Object, len(g.children))
	for i, child := range g.children {
		children[i] = child.Clone()
	}
	return NewGroup(children, g.operations, g.viewOptions)
}
