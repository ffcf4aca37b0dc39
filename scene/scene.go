package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	log "github.com/sirupsen/logrus"

	"github.com/Bitbloq/bitbloq/geometry"
	"github.com/Bitbloq/bitbloq/solver"
)

// SceneJSON is the persisted form of a whole document: the root objects in
// order. Nested objects travel inside their parents' children arrays.
type SceneJSON []*ObjectJSON

// RenderItem pairs a resolved mesh with the JSON descriptor of the root
// object it came from.
type RenderItem struct {
	Object *ObjectJSON
	Mesh   *geometry.Mesh
}

// Scene owns the document objects. The collector is an arena holding every
// node added in the session keyed by id; roots is the ordered subset of ids
// rendered and serialized as top-level content. A node is a root or a child
// of exactly one root subtree, never both.
type Scene struct {
	factory   *Factory
	collector map[string]Object
	roots     []string

	history      []SceneJSON
	historyIndex int

	lastJSON  SceneJSON
	lastItems []RenderItem
}

// New creates an empty scene whose compound objects use the given boolean
// engine.
func New(s solver.Solver) *Scene {
	sc := &Scene{
		factory:   NewFactory(s),
		collector: map[string]Object{},
	}
	sc.history = []SceneJSON{sc.ToJSON()}
	sc.historyIndex = 0
	return sc
}

// NewFromJSON rebuilds a scene from its persisted form. The resulting
// history holds the loaded document as its single snapshot.
func NewFromJSON(doc SceneJSON, s solver.Solver) (*Scene, error) {
	sc := New(s)
	for _, rootJSON := range doc {
		obj, err := sc.factory.NewFromJSON(rootJSON)
		if err != nil {
			return nil, fmt.Errorf("scene: cannot load document: %w", err)
		}
		if err := sc.insertObject(obj); err != nil {
			return nil, fmt.Errorf("scene: cannot load document: %w", err)
		}
	}
	sc.history = []SceneJSON{sc.ToJSON()}
	sc.historyIndex = 0
	return sc, nil
}

// ToJSON serializes the current root objects. The result is a pure function
// of the roots; it never includes history or helper state.
func (s *Scene) ToJSON() SceneJSON {
	doc := make(SceneJSON, 0, len(s.roots))
	for _, id := range s.roots {
		doc = append(doc, s.collector[id].ToJSON())
	}
	return doc
}

// Objects resolves the renderable meshes of all roots. The walk is memoized:
// it recomputes only when the serialized scene changed since the last call.
func (s *Scene) Objects(ctx context.Context) ([]RenderItem, error) {
	current := s.ToJSON()
	if s.lastItems != nil && reflect.DeepEqual(current, s.lastJSON) {
		return s.lastItems, nil
	}

	items := make([]RenderItem, 0, len(s.roots))
	for _, id := range s.roots {
		obj := s.collector[id]
		mesh, err := obj.Mesh(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, RenderItem{Object: obj.ToJSON(), Mesh: mesh})
	}
	s.lastJSON = current
	s.lastItems = items
	return items, nil
}

// AddNewObjectFromJSON constructs an object from its JSON form and adds it
// as a root.
func (s *Scene) AddNewObjectFromJSON(j *ObjectJSON) error {
	obj, err := s.factory.NewFromJSON(j)
	if err != nil {
		return fmt.Errorf("scene: cannot add object: %w", err)
	}
	return s.AddExistingObject(obj)
}

// AddExistingObject adds an already constructed object as a root. Children
// of compounds, groups and repetitions are demoted from root status but stay
// in the collector.
func (s *Scene) AddExistingObject(obj Object) error {
	if _, exists := s.collector[obj.ID()]; exists {
		return fmt.Errorf("scene: object %s already in scene", obj.ID())
	}
	if err := s.insertObject(obj); err != nil {
		return err
	}
	s.pushHistory()
	return nil
}

// insertObject performs the collector/roots bookkeeping without touching
// history.
func (s *Scene) insertObject(obj Object) error {
	if _, exists := s.collector[obj.ID()]; exists {
		return fmt.Errorf("scene: object %s already in scene", obj.ID())
	}

	switch o := obj.(type) {
	case *Compound:
		for _, child := range o.Children() {
			s.demote(child)
		}
	case *Group:
		for _, child := range o.Children() {
			s.demote(child)
		}
	case *Repetition:
		s.demote(o.Original())
	}

	s.collector[obj.ID()] = obj
	s.roots = append(s.roots, obj.ID())
	return nil
}

// demote removes a node from the roots, leaving it reachable only through
// its parent. The subtree is registered unconditionally so the collector
// always holds the instances the parent resolves, not stale former roots.
func (s *Scene) demote(obj Object) {
	s.registerSubtree(obj)
	s.removeRoot(obj.ID())
}

func (s *Scene) registerSubtree(obj Object) {
	s.collector[obj.ID()] = obj
	switch o := obj.(type) {
	case *Compound:
		for _, child := range o.Children() {
			s.registerSubtree(child)
		}
	case *Group:
		for _, child := range o.Children() {
			s.registerSubtree(child)
		}
	case *Repetition:
		s.registerSubtree(o.Original())
	}
}

func (s *Scene) removeRoot(id string) {
	for i, rootID := range s.roots {
		if rootID == id {
			s.roots = append(s.roots[:i], s.roots[i+1:]...)
			return
		}
	}
}

// RemoveObject removes the referenced object from both the roots and the
// collector.
func (s *Scene) RemoveObject(j *ObjectJSON) error {
	if _, known := s.collector[j.ID]; !known {
		return fmt.Errorf("scene: object %s not present in scene", j.ID)
	}
	s.removeRoot(j.ID)
	delete(s.collector, j.ID)
	s.pushHistory()
	return nil
}

// UpdateObject applies the JSON patch to the matching collector entry.
func (s *Scene) UpdateObject(j *ObjectJSON) error {
	obj, known := s.collector[j.ID]
	if !known {
		return fmt.Errorf("scene: object %s not found", j.ID)
	}
	if err := obj.UpdateFromJSON(j); err != nil {
		return err
	}
	s.pushHistory()
	return nil
}

// CloneObject deep-duplicates the referenced root, inserting the copy as a
// new root under fresh ids.
func (s *Scene) CloneObject(j *ObjectJSON) error {
	if !s.isRoot(j.ID) {
		return fmt.Errorf("scene: cannot clone unknown object %s", j.ID)
	}
	clone := s.collector[j.ID].Clone()
	clone.SetViewOptions(j.ViewOptions)
	return s.AddExistingObject(clone)
}

func (s *Scene) isRoot(id string) bool {
	for _, rootID := range s.roots {
		if rootID == id {
			return true
		}
	}
	return false
}

// UnGroup dissolves the referenced group, promoting its members to roots.
func (s *Scene) UnGroup(j *ObjectJSON) error {
	obj, known := s.collector[j.ID]
	if !known {
		return fmt.Errorf("scene: object %s not present in scene", j.ID)
	}
	group, ok := obj.(*Group)
	if !ok {
		return fmt.Errorf("scene: object %s is not a group", j.ID)
	}
	for _, member := range group.UnGroup() {
		s.roots = append(s.roots, member.ID())
	}
	s.removeRoot(j.ID)
	delete(s.collector, j.ID)
	s.pushHistory()
	return nil
}

// RepetitionToGroup replaces the referenced repetition with an equivalent
// group of per-instance clones.
func (s *Scene) RepetitionToGroup(j *ObjectJSON) error {
	obj, known := s.collector[j.ID]
	if !known {
		return fmt.Errorf("scene: object %s not present in scene", j.ID)
	}
	rep, ok := obj.(*Repetition)
	if !ok {
		return fmt.Errorf("scene: object %s is not a repetition", j.ID)
	}

	group := rep.Group()
	for _, member := range group.Children() {
		s.registerSubtree(member)
	}
	s.collector[group.ID()] = group
	s.roots = append(s.roots, group.ID())

	delete(s.collector, rep.Original().ID())
	s.removeRoot(j.ID)
	delete(s.collector, j.ID)
	s.pushHistory()
	return nil
}

// CanUndo reports whether an earlier snapshot exists.
func (s *Scene) CanUndo() bool { return s.historyIndex > 0 }

// CanRedo reports whether a later snapshot exists.
func (s *Scene) CanRedo() bool { return s.historyIndex < len(s.history)-1 }

// Undo restores the previous snapshot.
func (s *Scene) Undo() error {
	if !s.CanUndo() {
		return fmt.Errorf("scene: nothing to undo")
	}
	s.historyIndex--
	return s.restore(s.history[s.historyIndex])
}

// Redo restores the next snapshot. It is only possible until the next
// structural mutation, which discards the redo tail.
func (s *Scene) Redo() error {
	if !s.CanRedo() {
		return fmt.Errorf("scene: nothing to redo")
	}
	s.historyIndex++
	return s.restore(s.history[s.historyIndex])
}

// pushHistory appends the current document, discarding any redo tail.
func (s *Scene) pushHistory() {
	s.history = append(s.history[:s.historyIndex+1], s.ToJSON())
	s.historyIndex = len(s.history) - 1
}

// restore rebuilds the collector and roots from a snapshot.
func (s *Scene) restore(doc SceneJSON) error {
	collector := map[string]Object{}
	roots := make([]string, 0, len(doc))
	for _, rootJSON := range doc {
		obj, err := s.factory.NewFromJSON(rootJSON)
		if err != nil {
			return fmt.Errorf("scene: cannot restore snapshot: %w", err)
		}
		collector[obj.ID()] = obj
		roots = append(roots, obj.ID())
	}
	for _, id := range roots {
		s.registerInto(collector, collector[id])
	}
	s.collector = collector
	s.roots = roots
	log.Debugf("scene: restored snapshot with %d roots", len(roots))
	return nil
}

func (s *Scene) registerInto(collector map[string]Object, obj Object) {
	collector[obj.ID()] = obj
	switch o := obj.(type) {
	case *Compound:
		for _, child := range o.Children() {
			s.registerInto(collector, child)
		}
	case *Group:
		for _, child := range o.Children() {
			s.registerInto(collector, child)
		}
	case *Repetition:
		s.registerInto(collector, o.Original())
	}
}

// Equal reports whether two documents are structurally equal.
func (a SceneJSON) Equal(b SceneJSON) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
