package scene

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitbloq/bitbloq/solver"
)

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	s := solver.NewLocalSolver()
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func cubeJSON(id string, size float64, ops ...Operation) *ObjectJSON {
	params, _ := json.Marshal(CubeParams{Width: size, Height: size, Depth: size})
	return &ObjectJSON{
		ID:          id,
		Type:        TypeCube,
		Parameters:  params,
		Operations:  ops,
		ViewOptions: DefaultViewOptions(),
	}
}

func rootIDs(s *Scene) []string {
	doc := s.ToJSON()
	ids := make([]string, 0, len(doc))
	for _, j := range doc {
		ids = append(ids, j.ID)
	}
	return ids
}

func TestAddAndSerializeRoundTrip(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("b", 2, Operation{Type: OpTranslation, X: 3})))

	doc := s.ToJSON()
	require.Len(t, doc, 2)
	assert.Equal(t, []string{"a", "b"}, rootIDs(s))

	solverEngine := solver.NewLocalSolver()
	defer solverEngine.Close()
	reloaded, err := NewFromJSON(doc, solverEngine)
	require.NoError(t, err)
	assert.True(t, reloaded.ToJSON().Equal(doc))
}

func TestAddDuplicateIDFails(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))
	assert.Error(t, s.AddNewObjectFromJSON(cubeJSON("a", 2)))
}

func TestRemoveObject(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("b", 1)))

	require.NoError(t, s.RemoveObject(&ObjectJSON{ID: "a"}))
	assert.Equal(t, []string{"b"}, rootIDs(s))

	assert.Error(t, s.RemoveObject(&ObjectJSON{ID: "a"}))
}

func TestUpdateObject(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))

	require.NoError(t, s.UpdateObject(cubeJSON("a", 7)))

	var params CubeParams
	require.NoError(t, json.Unmarshal(s.ToJSON()[0].Parameters, &params))
	assert.Equal(t, 7.0, params.Width)

	assert.Error(t, s.UpdateObject(cubeJSON("missing", 1)))
}

func TestCloneObject(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))

	require.NoError(t, s.CloneObject(s.ToJSON()[0]))

	doc := s.ToJSON()
	require.Len(t, doc, 2)
	assert.NotEqual(t, doc[0].ID, doc[1].ID)
	assert.Equal(t, doc[0].Parameters, doc[1].Parameters)

	assert.Error(t, s.CloneObject(&ObjectJSON{ID: "missing"}))
}

func TestInsertDemotesCompoundChildren(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("b", 1, Operation{Type: OpTranslation, X: 0.5})))

	union := &ObjectJSON{
		ID:          "u",
		Type:        TypeUnion,
		ViewOptions: DefaultViewOptions(),
		Children: []*ObjectJSON{
			s.ToJSON()[0],
			s.ToJSON()[1],
		},
	}
	require.NoError(t, s.AddNewObjectFromJSON(union))

	// children left the root list but stay addressable
	assert.Equal(t, []string{"u"}, rootIDs(s))
	require.NoError(t, s.UpdateObject(cubeJSON("a", 3)))
}

func TestUpdateDemotedChildRecomputesCompound(t *testing.T) {
	ctx := context.Background()
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("b", 1, Operation{Type: OpTranslation, X: 0.5})))

	union := &ObjectJSON{
		ID:          "u",
		Type:        TypeUnion,
		ViewOptions: DefaultViewOptions(),
		Children:    []*ObjectJSON{s.ToJSON()[0], s.ToJSON()[1]},
	}
	require.NoError(t, s.AddNewObjectFromJSON(union))

	items, err := s.Objects(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	_, max := items[0].Mesh.Bounds()
	assert.InDelta(t, 1, max.X(), 1e-6)

	// patching the demoted child reaches the next render
	require.NoError(t, s.UpdateObject(cubeJSON("a", 10)))
	after, err := s.Objects(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	_, max = after[0].Mesh.Bounds()
	assert.InDelta(t, 5, max.X(), 1e-6)
}

func TestObjectsResolvesAllRoots(t *testing.T) {
	ctx := context.Background()
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("b", 2, Operation{Type: OpTranslation, X: 5})))

	items, err := s.Objects(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Object.ID)
	assert.Equal(t, 12, items[0].Mesh.TriangleCount())

	// unchanged scenes reuse the resolved list
	again, err := s.Objects(ctx)
	require.NoError(t, err)
	assert.Same(t, &items[0], &again[0])

	require.NoError(t, s.UpdateObject(cubeJSON("a", 4)))
	after, err := s.Objects(ctx)
	require.NoError(t, err)
	require.Len(t, after, 2)
	min, max := after[0].Mesh.Bounds()
	assert.InDelta(t, 4, max.X()-min.X(), 1e-9)
}

func TestUnGroupPromotesMembers(t *testing.T) {
	s := newTestScene(t)
	group := &ObjectJSON{
		ID:          "g",
		Type:        TypeGroup,
		ViewOptions: DefaultViewOptions(),
		Children: []*ObjectJSON{
			cubeJSON("m1", 1),
			cubeJSON("m2", 1, Operation{Type: OpTranslation, X: 2}),
		},
	}
	require.NoError(t, s.AddNewObjectFromJSON(group))
	assert.Equal(t, []string{"g"}, rootIDs(s))

	require.NoError(t, s.UnGroup(&ObjectJSON{ID: "g"}))
	assert.Equal(t, []string{"m1", "m2"}, rootIDs(s))

	assert.Error(t, s.UnGroup(&ObjectJSON{ID: "m1"}))
	assert.Error(t, s.UnGroup(&ObjectJSON{ID: "g"}))
}

func TestRepetitionToGroup(t *testing.T) {
	s := newTestScene(t)
	params, _ := json.Marshal(RepetitionParams{Type: RepetitionCartesian, Num: 3, X: 2})
	rep := &ObjectJSON{
		ID:          "r",
		Type:        TypeRepetition,
		Parameters:  params,
		ViewOptions: DefaultViewOptions(),
		Children:    []*ObjectJSON{cubeJSON("orig", 1)},
	}
	require.NoError(t, s.AddNewObjectFromJSON(rep))

	require.NoError(t, s.RepetitionToGroup(&ObjectJSON{ID: "r"}))

	doc := s.ToJSON()
	require.Len(t, doc, 1)
	assert.Equal(t, TypeGroup, doc[0].Type)
	assert.Len(t, doc[0].Children, 3)

	// the repetition and its original are gone
	assert.Error(t, s.UpdateObject(cubeJSON("orig", 2)))
	assert.Error(t, s.RepetitionToGroup(&ObjectJSON{ID: "r"}))
}

func TestRepetitionToGroupRejectsOtherTypes(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))
	assert.Error(t, s.RepetitionToGroup(&ObjectJSON{ID: "a"}))
}
