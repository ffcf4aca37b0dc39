package scene

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitbloq/bitbloq/solver"
)

func newTestFactory(t *testing.T) *Factory {
	t.Helper()
	s := solver.NewLocalSolver()
	t.Cleanup(func() { s.Close() })
	return NewFactory(s)
}

func testCube(size float64, ops ...Operation) *Cube {
	return NewCube(CubeParams{Width: size, Height: size, Depth: size}, ops, DefaultViewOptions())
}

func TestCompoundRequiresSolver(t *testing.T) {
	_, err := NewUnion([]Object{testCube(1)}, nil, DefaultViewOptions(), nil)
	assert.ErrorIs(t, err, ErrNoSolver)

	_, err = NewUnion([]Object{testCube(1)}, nil, DefaultViewOptions(), NewFactory(nil))
	assert.ErrorIs(t, err, ErrNoSolver)
}

func TestUnionMesh(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	union, err := NewUnion(
		[]Object{testCube(1), testCube(1, Operation{Type: OpTranslation, X: 0.5})},
		nil, DefaultViewOptions(), factory,
	)
	require.NoError(t, err)

	m, err := union.Mesh(ctx)
	require.NoError(t, err)
	require.NotZero(t, m.TriangleCount())

	// the result frame sits on the first child
	min, max := m.Bounds()
	assert.InDelta(t, -0.5, min.X(), 1e-6)
	assert.InDelta(t, 1.0, max.X(), 1e-6)
}

func TestDifferenceChildOrderMatters(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	big := func() *Cube {
		return NewCube(CubeParams{Width: 2, Height: 1, Depth: 1}, nil, DefaultViewOptions())
	}
	bite := func() *Cube {
		return NewCube(CubeParams{Width: 1, Height: 2, Depth: 2},
			[]Operation{{Type: OpTranslation, X: 0.75}}, DefaultViewOptions())
	}

	forward, err := NewDifference([]Object{big(), bite()}, nil, DefaultViewOptions(), factory)
	require.NoError(t, err)
	m, err := forward.Mesh(ctx)
	require.NoError(t, err)
	_, maxF := m.Bounds()
	assert.InDelta(t, 0.25, maxF.X(), 1e-6)

	reversed, err := NewDifference([]Object{bite(), big()}, nil, DefaultViewOptions(), factory)
	require.NoError(t, err)
	m, err = reversed.Mesh(ctx)
	require.NoError(t, err)

	// anchored on the bite cube, whose world origin is x=0.75
	minR, maxR := m.Bounds()
	assert.InDelta(t, -0.5, minR.X(), 1e-6)
	assert.InDelta(t, 0.5, maxR.X(), 1e-6)
}

func TestCompoundMeshIsCached(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	union, err := NewUnion(
		[]Object{testCube(1), testCube(1, Operation{Type: OpTranslation, X: 0.5})},
		nil, DefaultViewOptions(), factory,
	)
	require.NoError(t, err)

	first, err := union.Mesh(ctx)
	require.NoError(t, err)
	second, err := union.Mesh(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	// placement changes do not recompute the boolean
	union.AddOperations(Operation{Type: OpTranslation, Z: 3})
	third, err := union.Mesh(ctx)
	require.NoError(t, err)
	assert.Same(t, first, third)

	// structural changes do
	union.AddChild(testCube(1, Operation{Type: OpTranslation, X: 1}))
	fourth, err := union.Mesh(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, fourth)
}

func TestCompoundRecomputesAfterChildEdit(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	a := testCube(1)
	union, err := NewUnion(
		[]Object{a, testCube(1, Operation{Type: OpTranslation, X: 0.5})},
		nil, DefaultViewOptions(), factory,
	)
	require.NoError(t, err)

	first, err := union.Mesh(ctx)
	require.NoError(t, err)
	assert.False(t, union.NeedsMeshUpdate())

	a.SetParameters(CubeParams{Width: 10, Height: 1, Depth: 1})
	assert.True(t, union.NeedsMeshUpdate())

	second, err := union.Mesh(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	_, max := second.Bounds()
	assert.InDelta(t, 5, max.X(), 1e-6)

	// resolving settles the child flags, restoring the cache
	assert.False(t, union.NeedsMeshUpdate())
	third, err := union.Mesh(ctx)
	require.NoError(t, err)
	assert.Same(t, second, third)
}

func TestCompoundRecomputesAfterChildMove(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	b := testCube(1, Operation{Type: OpTranslation, X: 0.5})
	union, err := NewUnion([]Object{testCube(1), b}, nil, DefaultViewOptions(), factory)
	require.NoError(t, err)

	m, err := union.Mesh(ctx)
	require.NoError(t, err)
	_, max := m.Bounds()
	assert.InDelta(t, 1, max.X(), 1e-6)

	b.AddOperations(Operation{Type: OpTranslation, X: 0.5})
	m, err = union.Mesh(ctx)
	require.NoError(t, err)
	_, max = m.Bounds()
	assert.InDelta(t, 1.5, max.X(), 1e-6)
}

func TestCompoundWithoutChildrenFails(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	union, err := NewUnion(nil, nil, DefaultViewOptions(), factory)
	require.NoError(t, err)

	_, err = union.Mesh(ctx)
	assert.ErrorIs(t, err, ErrCompoundOperation)
}

func TestCompoundConcurrentMeshCallsShareResult(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	union, err := NewUnion(
		[]Object{testCube(2), testCube(2, Operation{Type: OpTranslation, X: 1})},
		nil, DefaultViewOptions(), factory,
	)
	require.NoError(t, err)

	type result struct {
		mesh interface{}
		err  error
	}
	results := make(chan result, 8)
	for i := 0; i < 8; i++ {
		go func() {
			m, err := union.Mesh(ctx)
			results <- result{mesh: m, err: err}
		}()
	}

	first := <-results
	require.NoError(t, first.err)
	for i := 1; i < 8; i++ {
		r := <-results
		require.NoError(t, r.err)
		assert.Same(t, first.mesh, r.mesh)
	}
}

func TestCompoundOfGroupUnionsMembers(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	// subtracting a two-pillar group carves both pillars in one operation
	pillars := NewGroup([]Object{
		NewCube(CubeParams{Width: 1, Height: 6, Depth: 1},
			[]Operation{{Type: OpTranslation, X: -1}}, DefaultViewOptions()),
		NewCube(CubeParams{Width: 1, Height: 6, Depth: 1},
			[]Operation{{Type: OpTranslation, X: 1}}, DefaultViewOptions()),
	}, nil, DefaultViewOptions())

	slab := NewCube(CubeParams{Width: 4, Height: 4, Depth: 4}, nil, DefaultViewOptions())

	diff, err := NewDifference([]Object{slab, pillars}, nil, DefaultViewOptions(), factory)
	require.NoError(t, err)

	m, err := diff.Mesh(ctx)
	require.NoError(t, err)
	require.NotZero(t, m.TriangleCount())
	min, max := m.Bounds()
	assert.InDelta(t, -2, min.X(), 1e-6)
	assert.InDelta(t, 2, max.X(), 1e-6)
}

func TestCompoundJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	factory := newTestFactory(t)

	union, err := NewUnion(
		[]Object{testCube(1), testCube(1, Operation{Type: OpTranslation, X: 0.5})},
		nil, DefaultViewOptions(), factory,
	)
	require.NoError(t, err)

	rebuilt, err := factory.NewFromJSON(union.ToJSON())
	require.NoError(t, err)
	assert.Equal(t, union.ID(), rebuilt.ID())

	m, err := rebuilt.Mesh(ctx)
	require.NoError(t, err)
	min, max := m.Bounds()
	assert.InDelta(t, -0.5, min.X(), 1e-6)
	assert.InDelta(t, 1.0, max.X(), 1e-6)
}
