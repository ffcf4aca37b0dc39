package scene

import (
	"fmt"

	"github.com/Bitbloq/bitbloq/solver"
)

// Factory builds objects from their JSON form, dispatching on the type tag.
// Compound objects receive the factory's solver.
type Factory struct {
	Solver solver.Solver
}

// NewFactory creates a factory around the given boolean engine.
func NewFactory(s solver.Solver) *Factory {
	return &Factory{Solver: s}
}

// NewFromJSON constructs the object variant named by j.Type. Ids present in
// the JSON are preserved; missing ids get fresh ones.
func (f *Factory) NewFromJSON(j *ObjectJSON) (Object, error) {
	switch j.Type {
	case TypeCube:
		var params CubeParams
		if err := unmarshalParams(j, &params); err != nil {
			return nil, err
		}
		c := NewCube(params, j.Operations, j.ViewOptions)
		c.setID(j.ID)
		return c, nil

	case TypeSphere:
		var params SphereParams
		if err := unmarshalParams(j, &params); err != nil {
			return nil, err
		}
		s := NewSphere(params, j.Operations, j.ViewOptions)
		s.setID(j.ID)
		return s, nil

	case TypeCylinder:
		var params CylinderParams
		if err := unmarshalParams(j, &params); err != nil {
			return nil, err
		}
		c := NewCylinder(params, j.Operations, j.ViewOptions)
		c.setID(j.ID)
		return c, nil

	case TypePrism:
		var params PrismParams
		if err := unmarshalParams(j, &params); err != nil {
			return nil, err
		}
		p := NewPrism(params, j.Operations, j.ViewOptions)
		p.setID(j.ID)
		return p, nil

	case TypeUnion, TypeDifference, TypeIntersection:
		children, err := f.newChildren(j)
		if err != nil {
			return nil, err
		}
		var compound *Compound
		switch j.Type {
		case TypeUnion:
			compound, err = NewUnion(children, j.Operations, j.ViewOptions, f)
		case TypeDifference:
			compound, err = NewDifference(children, j.Operations, j.ViewOptions, f)
		case TypeIntersection:
			compound, err = NewIntersection(children, j.Operations, j.ViewOptions, f)
		}
		if err != nil {
			return nil, err
		}
		compound.setID(j.ID)
		return compound, nil

	case TypeGroup:
		children, err := f.newChildren(j)
		if err != nil {
			return nil, err
		}
		g := NewGroup(children, j.Operations, j.ViewOptions)
		g.setID(j.ID)
		return g, nil

	case TypeRepetition:
		var params RepetitionParams
		if err := unmarshalParams(j, &params); err != nil {
			return nil, err
		}
		if len(j.Children) != 1 {
			return nil, fmt.Errorf("scene: repetition %s needs exactly one child, got %d", j.ID, len(j.Children))
		}
		original, err := f.NewFromJSON(j.Children[0])
		if err != nil {
			return nil, err
		}
		r := NewRepetition(params, original, j.Operations, j.ViewOptions)
		if err := r.validate(); err != nil {
			return nil, err
		}
		r.setID(j.ID)
		return r, nil

	default:
		return nil, fmt.Errorf("scene: unknown object type %q", j.Type)
	}
}

func (f *Factory) newChildren(j *ObjectJSON) ([]Object, error) {
	children := make([]Object, 0, len(j.Children))
	for _, childJSON := range j.Children {
		child, err := f.NewFromJSON(childJSON)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}
