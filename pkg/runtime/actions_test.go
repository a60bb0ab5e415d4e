package runtime

import (
	"errors"
	"testing"
)

func mustExec(t *testing.T, r *Runtime, action string, input map[string]any) *Result {
	t.Helper()
	res, err := r.Execute(action, input)
	if err != nil {
		t.Fatalf("%s: %v", action, err)
	}
	return res
}

func exportJSON(t *testing.T, r *Runtime) string {
	t.Helper()
	data, err := r.ExportProjectJSON()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestAddPrimitive(t *testing.T) {
	r := New()
	res := mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})
	if res.Output["id"] != "obj_cube_1" || res.Output["name"] != "Cube 1" {
		t.Errorf("unexpected output: %v", res.Output)
	}
	if r.SelectedObjectID() != "obj_cube_1" {
		t.Error("new primitive should become the selection")
	}

	res = mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})
	if res.Output["id"] != "obj_cube_2" {
		t.Errorf("expected obj_cube_2, got %v", res.Output["id"])
	}
}

func TestAddPrimitive_UnknownKind(t *testing.T) {
	r := New()
	_, err := r.Execute("scene.addPrimitive", map[string]any{"kind": "torus"})
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Code != CodeInvalidInput {
		t.Errorf("expected %s, got %v", CodeInvalidInput, err)
	}
	if len(r.ObjectRefs()) != 0 {
		t.Error("failed command must not leave objects behind")
	}
}

func TestUnknownAction(t *testing.T) {
	r := New()
	_, err := r.Execute("scene.teleport", nil)
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Code != CodeUnknownAction {
		t.Errorf("expected %s, got %v", CodeUnknownAction, err)
	}
}

func TestDeleteSelected_ConfirmGate(t *testing.T) {
	r := New()
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})

	_, err := r.Execute("scene.deleteSelected", nil)
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Code != CodeConfirmRequired {
		t.Fatalf("expected %s, got %v", CodeConfirmRequired, err)
	}
	if len(r.ObjectRefs()) != 1 {
		t.Error("blocked delete must not mutate the scene")
	}

	mustExec(t, r, "scene.deleteSelected", map[string]any{"confirm": true})
	if len(r.ObjectRefs()) != 0 {
		t.Error("confirmed delete should remove the object")
	}
}

func TestDeleteSelected_RemovesDescendants(t *testing.T) {
	r := New()
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})   // obj_cube_1
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "sphere"}) // obj_sphere_1
	mustExec(t, r, "scene.parent", map[string]any{"childId": "obj_sphere_1", "parentId": "obj_cube_1"})
	mustExec(t, r, "scene.selectById", map[string]any{"id": "obj_cube_1"})

	res := mustExec(t, r, "scene.deleteSelected", map[string]any{"confirm": true})
	deleted := res.Output["deletedIds"].([]string)
	if len(deleted) != 2 {
		t.Errorf("expected parent and child deleted, got %v", deleted)
	}
	if len(r.ObjectRefs()) != 0 {
		t.Error("descendants should be gone")
	}
}

func TestParent_CycleRejected(t *testing.T) {
	r := New()
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})
	mustExec(t, r, "scene.parent", map[string]any{"childId": "obj_cube_2", "parentId": "obj_cube_1"})

	_, err := r.Execute("scene.parent", map[string]any{"childId": "obj_cube_1", "parentId": "obj_cube_2"})
	if err == nil {
		t.Fatal("expected cycle rejection")
	}
}

func TestSelectByName_Ambiguous(t *testing.T) {
	r := New()
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube", "name": "Crate"})
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube", "name": "Crate"})

	_, err := r.Execute("scene.selectByName", map[string]any{"name": "Crate"})
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Code != CodeAmbiguousName {
		t.Fatalf("expected %s, got %v", CodeAmbiguousName, err)
	}
	if len(rtErr.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %v", rtErr.Candidates)
	}
}

func TestSelectByName_Unknown(t *testing.T) {
	r := New()
	_, err := r.Execute("scene.selectByName", map[string]any{"name": "Ghost"})
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Code != CodeUnknownObject {
		t.Errorf("expected %s, got %v", CodeUnknownObject, err)
	}
}

func TestDuplicateSelected_CopiesTracks(t *testing.T) {
	r := New()
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})
	mustExec(t, r, "animation.insertRecords", map[string]any{
		"records": []map[string]any{
			{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 1.0, "value": 2.0},
		},
	})

	res := mustExec(t, r, "scene.duplicateSelected", nil)
	if res.Output["id"] != "obj_cube_2" {
		t.Fatalf("unexpected duplicate id: %v", res.Output["id"])
	}

	doc := r.ExportDocument()
	trackOwners := map[string]bool{}
	for _, tr := range doc.Clip.Tracks {
		trackOwners[tr.ObjectID] = true
	}
	if !trackOwners["obj_cube_1"] || !trackOwners["obj_cube_2"] {
		t.Errorf("duplicate should carry the source animation, got %v", trackOwners)
	}
}

func TestInsertRecords_Validation(t *testing.T) {
	r := New()
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})

	cases := []map[string]any{
		{"objectId": "obj_ghost", "propertyPath": "position.y", "time": 1.0, "value": 1.0},
		{"objectId": "obj_cube_1", "propertyPath": "position.w", "time": 1.0, "value": 1.0},
		{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": -1.0, "value": 1.0},
	}
	for i, rec := range cases {
		_, err := r.Execute("animation.insertRecords", map[string]any{"records": []map[string]any{rec}})
		if err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestInsertRecords_ReplaceAtSameTime(t *testing.T) {
	r := New()
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})
	insert := func(value float64) {
		mustExec(t, r, "animation.insertRecords", map[string]any{
			"records": []map[string]any{
				{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 1.0, "value": value},
			},
		})
	}
	insert(2)
	insert(3)

	doc := r.ExportDocument()
	if len(doc.Clip.Tracks) != 1 || len(doc.Clip.Tracks[0].Keys) != 1 {
		t.Fatalf("expected a single key, got %+v", doc.Clip.Tracks)
	}
	if doc.Clip.Tracks[0].Keys[0].Value != 3 {
		t.Errorf("expected replacement value 3, got %v", doc.Clip.Tracks[0].Keys[0].Value)
	}
}

func TestRemoveKeys(t *testing.T) {
	r := New()
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})
	mustExec(t, r, "animation.insertRecords", map[string]any{
		"records": []map[string]any{
			{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 1.0, "value": 2.0},
		},
	})

	res := mustExec(t, r, "animation.removeKeys", map[string]any{
		"keys": []map[string]any{
			{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 1.0},
			{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 9.0}, // misses
		},
	})
	if res.Output["removed"] != 1 {
		t.Errorf("expected 1 removal, got %v", res.Output["removed"])
	}

	doc := r.ExportDocument()
	if len(doc.Clip.Tracks) != 0 {
		t.Error("empty tracks should be cleaned up")
	}
}

func TestSetTakes_Validation(t *testing.T) {
	r := New() // default clip: 5s

	cases := []map[string]any{
		{"id": "t1", "name": "", "startTime": 0.0, "endTime": 1.0},
		{"id": "t1", "name": "A", "startTime": 2.0, "endTime": 1.0},
		{"id": "t1", "name": "A", "startTime": 0.0, "endTime": 7.0},
	}
	for i, take := range cases {
		_, err := r.Execute("animation.setTakes", map[string]any{"takes": []map[string]any{take}})
		var rtErr *Error
		if !errors.As(err, &rtErr) || rtErr.Code != CodeInvalidTake {
			t.Errorf("case %d: expected %s, got %v", i, CodeInvalidTake, err)
		}
	}

	_, err := r.Execute("animation.setTakes", map[string]any{"takes": []map[string]any{
		{"id": "t1", "name": "Intro", "startTime": 0.0, "endTime": 1.0},
		{"id": "t2", "name": " intro ", "startTime": 1.0, "endTime": 2.0},
	}})
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Code != CodeInvalidTake {
		t.Errorf("expected duplicate name rejection, got %v", err)
	}
}

func TestEventSequenceIncrements(t *testing.T) {
	r := New()
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})
	mustExec(t, r, "scene.inspect", nil)
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "sphere"})

	events := r.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, ev := range events {
		if ev.Seq != int64(i+1) {
			t.Errorf("event %d: expected seq %d, got %d", i, i+1, ev.Seq)
		}
	}
}

// Undo must restore the exact pre-command state and redo the exact
// post-command state, for every command in a mixed scene/animation
// session.
func TestUndoRedo_Symmetry(t *testing.T) {
	r := New()

	commands := []struct {
		action string
		input  map[string]any
	}{
		{"scene.addPrimitive", map[string]any{"kind": "cube"}},
		{"scene.addPrimitive", map[string]any{"kind": "sphere"}},
		{"scene.parent", map[string]any{"childId": "obj_sphere_1", "parentId": "obj_cube_1"}},
		{"animation.insertRecords", map[string]any{
			"records": []map[string]any{
				{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 1.0, "value": 2.0},
			},
		}},
		{"scene.selectById", map[string]any{"id": "obj_cube_1"}},
		{"scene.duplicateSelected", nil},
		{"scene.deleteSelected", map[string]any{"confirm": true}},
	}

	// snapshots[i] is the state before command i; the last entry is the
	// final state.
	var snapshots []string
	for _, c := range commands {
		snapshots = append(snapshots, exportJSON(t, r))
		mustExec(t, r, c.action, c.input)
	}
	snapshots = append(snapshots, exportJSON(t, r))

	for i := len(commands) - 1; i >= 0; i-- {
		mustExec(t, r, "history.undo", nil)
		if got := exportJSON(t, r); got != snapshots[i] {
			t.Fatalf("undo to step %d: state mismatch", i)
		}
	}
	for i := 1; i <= len(commands); i++ {
		mustExec(t, r, "history.redo", nil)
		if got := exportJSON(t, r); got != snapshots[i] {
			t.Fatalf("redo to step %d: state mismatch", i)
		}
	}
}

func TestUndo_EmptyHistory(t *testing.T) {
	r := New()
	_, err := r.Execute("history.undo", nil)
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Code != CodeHistoryEmpty {
		t.Errorf("expected %s, got %v", CodeHistoryEmpty, err)
	}
}

func TestNewCommandClearsRedo(t *testing.T) {
	r := New()
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "cube"})
	mustExec(t, r, "history.undo", nil)
	mustExec(t, r, "scene.addPrimitive", map[string]any{"kind": "sphere"})

	_, err := r.Execute("history.redo", nil)
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Code != CodeHistoryEmpty {
		t.Errorf("expected cleared redo stack, got %v", err)
	}
}
