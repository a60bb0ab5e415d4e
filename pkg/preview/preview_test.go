package preview

import (
	"testing"

	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/runtime"
)

func seededRuntime(t *testing.T) *runtime.Runtime {
	t.Helper()
	rt := runtime.New()
	for _, cmd := range []struct {
		action string
		input  map[string]any
	}{
		{"scene.addPrimitive", map[string]any{"kind": "cube"}},
		{"animation.insertRecords", map[string]any{
			"records": []map[string]any{
				{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 0.0, "value": 0.0},
				{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 1.0, "value": 2.0},
			},
		}},
	} {
		if _, err := rt.Execute(cmd.action, cmd.input); err != nil {
			t.Fatal(err)
		}
	}
	return rt
}

func TestPlan_DiffCounts(t *testing.T) {
	rt := seededRuntime(t)
	p := &plan.Plan{ID: "plan_preview", Steps: []plan.Step{
		{ID: "step_1", Type: plan.StepMutate, Command: plan.Command{
			Action: "animation.insertRecords",
			Input: map[string]any{"records": []map[string]any{
				// new key on a new track
				{"objectId": "obj_cube_1", "propertyPath": "position.x", "time": 0.5, "value": 3.0},
				// overwrites the existing key at t=1
				{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 1.0, "value": 5.0},
			}},
		}},
		{ID: "step_2", Type: plan.StepMutate, Command: plan.Command{
			Action: "animation.removeKeys",
			Input: map[string]any{"keys": []map[string]any{
				{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 0.0},
			}},
		}},
	}}

	diff, err := Plan(p, rt)
	if err != nil {
		t.Fatal(err)
	}
	if diff.TotalAdded != 1 || diff.TotalRemoved != 1 || diff.TotalChanged != 1 {
		t.Errorf("got added=%d removed=%d changed=%d", diff.TotalAdded, diff.TotalRemoved, diff.TotalChanged)
	}
	if len(diff.Tracks) != 2 {
		t.Fatalf("expected 2 touched tracks, got %v", diff.Tracks)
	}
	// Sorted by (objectId, propertyPath).
	if diff.Tracks[0].PropertyPath != "position.x" || diff.Tracks[1].PropertyPath != "position.y" {
		t.Errorf("tracks out of order: %v", diff.Tracks)
	}
}

func TestPlan_LeavesLiveStateUntouched(t *testing.T) {
	rt := seededRuntime(t)
	before, err := rt.ExportProjectJSON()
	if err != nil {
		t.Fatal(err)
	}

	p := &plan.Plan{ID: "plan_sim", Steps: []plan.Step{
		{ID: "step_1", Type: plan.StepMutate, Command: plan.Command{
			Action: "scene.addPrimitive",
			Input:  map[string]any{"kind": "sphere"},
		}},
	}}
	if _, err := Plan(p, rt); err != nil {
		t.Fatal(err)
	}

	after, err := rt.ExportProjectJSON()
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Error("preview must not mutate the live runtime")
	}
}

func TestPlan_SimulationFailureSurfaces(t *testing.T) {
	rt := seededRuntime(t)
	p := &plan.Plan{ID: "plan_bad", Steps: []plan.Step{
		{ID: "step_1", Type: plan.StepMutate, Command: plan.Command{
			Action: "scene.addPrimitive",
			Input:  map[string]any{"kind": "torus"},
		}},
	}}
	if _, err := Plan(p, rt); err == nil {
		t.Error("expected simulation error")
	}
}

func TestPlan_InspectOnlyIsEmpty(t *testing.T) {
	rt := seededRuntime(t)
	p := &plan.Plan{ID: "plan_inspect", Steps: []plan.Step{
		{ID: "step_1", Type: plan.StepInspect, Command: plan.Command{Action: "scene.inspect"}},
	}}
	diff, err := Plan(p, rt)
	if err != nil {
		t.Fatal(err)
	}
	if !diff.Empty() {
		t.Errorf("inspect-only plan should change nothing, got %+v", diff)
	}
}

func TestDiffProjects_ObjectOnlyChangesIgnored(t *testing.T) {
	before := `{"version":1,"scene":{"objects":[]},"clip":{"durationSec":5}}`
	after := `{"version":1,"scene":{"objects":[{"id":"obj_a","name":"A","kind":"cube","position":[0,0,0],"rotation":[0,0,0],"scale":[1,1,1]}]},"clip":{"durationSec":5}}`
	diff, err := DiffProjects([]byte(before), []byte(after))
	if err != nil {
		t.Fatal(err)
	}
	if !diff.Empty() {
		t.Errorf("track diff must ignore scene-only changes, got %+v", diff)
	}
}
