package solver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	log "github.com/sirupsen/logrus"

	"github.com/Bitbloq/bitbloq/csg"
	"github.com/Bitbloq/bitbloq/geometry"
)

// Solver computes boolean mesh operations. Implementations run the
// computation on their own worker, never on the caller's goroutine.
type Solver interface {
	// Solve runs one boolean computation. A computation runs to completion
	// once dispatched; cancelling ctx abandons waiting for the result but
	// does not abort the worker.
	Solve(ctx context.Context, req *Request) (*Response, error)
	Close() error
}

// ErrClosed is returned by Solve after Close.
var ErrClosed = errors.New("solver: closed")

type job struct {
	req    *Request
	result chan *Response
}

// LocalSolver runs computations on dedicated worker goroutines. Requests
// travel over an internal queue and each computation answers on its own
// one-shot channel.
type LocalSolver struct {
	jobs      chan job
	done      chan struct{}
	closeOnce sync.Once
}

// NewLocalSolver starts a solver with a single worker goroutine.
func NewLocalSolver() *LocalSolver {
	return NewLocalSolverPool(1)
}

// NewLocalSolverPool starts the given number of worker goroutines; a request
// is dispatched to whichever worker is free. Values below 1 are treated as 1.
func NewLocalSolverPool(workers int) *LocalSolver {
	if workers < 1 {
		workers = 1
	}
	s := &LocalSolver{
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go s.run()
	}
	return s
}

// Solve implements Solver.
func (s *LocalSolver) Solve(ctx context.Context, req *Request) (*Response, error) {
	j := job{req: req, result: make(chan *Response, 1)}
	select {
	case s.jobs <- j:
	case <-s.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-j.result:
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the worker goroutine. In-flight computations still deliver
// their buffered result.
func (s *LocalSolver) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *LocalSolver) run() {
	for {
		select {
		case j := <-s.jobs:
			j.result <- Compute(j.req)
		case <-s.done:
			return
		}
	}
}

// Compute runs one boolean computation synchronously. It never panics; any
// internal failure yields an error-status response.
func Compute(req *Request) (res *Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("solver: computation panic: %v", r)
			res = &Response{Status: StatusError}
		}
	}()

	if len(req.Children) == 0 {
		return &Response{Status: StatusError}
	}
	if _, known := operationCodes[req.Op]; !known {
		return &Response{Status: StatusError}
	}

	// Resolve each child to one world-space solid, unioning multi-mesh
	// children first. The transform of the very first mesh anchors the
	// result frame.
	var firstWorld mgl64.Mat4
	operands := make([]*csg.Solid, 0, len(req.Children))
	for childIndex, child := range req.Children {
		if len(child.Meshes) == 0 {
			return &Response{Status: StatusError}
		}
		var solid *csg.Solid
		for meshIndex, payload := range child.Meshes {
			mesh, err := payloadMesh(payload)
			if err != nil {
				log.Warnf("solver: child %d mesh %d: %v", childIndex, meshIndex, err)
				return &Response{Status: StatusError}
			}
			if childIndex == 0 && meshIndex == 0 {
				firstWorld = mesh.Transform
			}
			if solid == nil {
				solid = csg.FromMesh(mesh)
			} else {
				solid = solid.Union(csg.FromMesh(mesh))
			}
		}
		operands = append(operands, solid)
	}

	// Fold left to right; Difference and Intersection are order sensitive.
	result := operands[0]
	for _, operand := range operands[1:] {
		switch req.Op {
		case OpUnion:
			result = result.Union(operand)
		case OpDifference:
			result = result.Subtract(operand)
		case OpIntersection:
			result = result.Intersect(operand)
		}
	}

	// Re-express the result relative to the first child's world placement so
	// the compound's local frame sits on its first member.
	mesh := result.ToMesh()
	mesh.ApplyMatrix(firstWorld.Inv())

	return &Response{
		Status:   StatusOK,
		Vertices: mesh.Vertices,
		Normals:  mesh.Normals,
	}
}

func payloadMesh(payload MeshPayload) (*geometry.Mesh, error) {
	mesh, err := geometry.NewMesh(payload.Vertices, payload.Normals)
	if err != nil {
		return nil, err
	}
	if mesh.TriangleCount() == 0 {
		return nil, fmt.Errorf("empty mesh")
	}
	mesh.Transform = mgl64.Mat4(payload.World)
	return mesh, nil
}
