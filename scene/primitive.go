package scene

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Bitbloq/bitbloq/geometry"
)

// shape is the geometry builder implemented by each primitive variant.
type shape interface {
	buildMesh() *geometry.Mesh
}

// primitive carries the lazy-mesh discipline shared by all parametric
// solids: the tessellation is rebuilt only on parameter changes, a plain
// placement change just rewrites the cached mesh transform.
type primitive struct {
	common
	shape shape
}

func (p *primitive) Mesh(ctx context.Context) (*geometry.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.mesh == nil || p.meshDirty {
		m := p.shape.buildMesh()
		m.Transform = composeOperations(p.operations)
		p.mesh = m
		p.meshDirty = false
		p.opsDirty = false
	} else if p.opsDirty {
		p.mesh.Transform = composeOperations(p.operations)
		p.opsDirty = false
	}
	return p.mesh, nil
}

// clampDimension keeps interactive edits from producing degenerate geometry:
// dimensions never go below 1.
func clampDimension(v float64) float64 {
	if v < 1 {
		return 1
	}
	return v
}

// segmentsForRadius scales curved-surface tessellation with size inside a
// fixed band.
func segmentsForRadius(radius float64) int {
	segments := int(radius * 24 / 5)
	if segments < 16 {
		return 16
	}
	if segments > 32 {
		return 32
	}
	return segments
}

func unmarshalParams(j *ObjectJSON, out interface{}) error {
	if len(j.Parameters) == 0 {
		return fmt.Errorf("scene: %s %s has no parameters", j.Type, j.ID)
	}
	if err := json.Unmarshal(j.Parameters, out); err != nil {
		return fmt.Errorf("scene: %s %s: bad parameters: %w", j.Type, j.ID, err)
	}
	return nil
}
