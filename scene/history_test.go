package scene

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSceneHasNoHistoryToWalk(t *testing.T) {
	s := newTestScene(t)
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.Error(t, s.Undo())
	assert.Error(t, s.Redo())
}

func TestUndoRedoSingleMutation(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))

	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	require.NoError(t, s.Undo())
	assert.Empty(t, s.ToJSON())
	assert.False(t, s.CanUndo())
	assert.True(t, s.CanRedo())

	require.NoError(t, s.Redo())
	assert.Equal(t, []string{"a"}, rootIDs(s))
	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestUndoAllMutationsThenRedoAll(t *testing.T) {
	s := newTestScene(t)

	const n = 5
	snapshots := []SceneJSON{s.ToJSON()}
	for i := 0; i < n; i++ {
		require.NoError(t, s.AddNewObjectFromJSON(cubeJSON(fmt.Sprintf("cube%d", i), 1)))
		snapshots = append(snapshots, s.ToJSON())
	}

	// walk back to the empty document
	for i := n; i > 0; i-- {
		assert.True(t, s.CanUndo())
		require.NoError(t, s.Undo())
		assert.True(t, s.ToJSON().Equal(snapshots[i-1]))
	}
	assert.False(t, s.CanUndo())

	// and forward again
	for i := 0; i < n; i++ {
		assert.True(t, s.CanRedo())
		require.NoError(t, s.Redo())
		assert.True(t, s.ToJSON().Equal(snapshots[i+1]))
	}
	assert.False(t, s.CanRedo())
}

func TestMutationDiscardsRedoTail(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("b", 1)))

	require.NoError(t, s.Undo())
	assert.True(t, s.CanRedo())

	// a new mutation forks the timeline; the undone branch is gone
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("c", 1)))
	assert.False(t, s.CanRedo())
	assert.Error(t, s.Redo())
	assert.Equal(t, []string{"a", "c"}, rootIDs(s))

	require.NoError(t, s.Undo())
	assert.Equal(t, []string{"a"}, rootIDs(s))
	require.NoError(t, s.Redo())
	assert.Equal(t, []string{"a", "c"}, rootIDs(s))
}

func TestUndoRestoresObjectState(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.AddNewObjectFromJSON(cubeJSON("a", 1)))
	require.NoError(t, s.UpdateObject(cubeJSON("a", 9)))

	var params CubeParams
	require.NoError(t, json.Unmarshal(s.ToJSON()[0].Parameters, &params))
	require.Equal(t, 9.0, params.Width)

	require.NoError(t, s.Undo())
	require.NoError(t, json.Unmarshal(s.ToJSON()[0].Parameters, &params))
	assert.Equal(t, 1.0, params.Width)

	// the restored object is editable again
	require.NoError(t, s.UpdateObject(cubeJSON("a", 2)))
	require.NoError(t, json.Unmarshal(s.ToJSON()[0].Parameters, &params))
	assert.Equal(t, 2.0, params.Width)
}

func TestUndoRedoKeepsNestedStructures(t *testing.T) {
	s := newTestScene(t)
	group := &ObjectJSON{
		ID:          "g",
		Type:        TypeGroup,
		ViewOptions: DefaultViewOptions(),
		Children: []*ObjectJSON{
			cubeJSON("m1", 1),
			cubeJSON("m2", 1),
		},
	}
	require.NoError(t, s.AddNewObjectFromJSON(group))
	require.NoError(t, s.UnGroup(&ObjectJSON{ID: "g"}))
	assert.Equal(t, []string{"m1", "m2"}, rootIDs(s))

	require.NoError(t, s.Undo())
	doc := s.ToJSON()
	require.Len(t, doc, 1)
	assert.Equal(t, "g", doc[0].ID)
	require.Len(t, doc[0].Children, 2)

	require.NoError(t, s.Redo())
	assert.Equal(t, []string{"m1", "m2"}, rootIDs(s))
}
