package tui

import (
	"strings"
	"testing"

	"github.com/motionforge/motionforge/pkg/runtime"
)

func testModel(t *testing.T) Model {
	t.Helper()
	rt := runtime.New()
	if _, err := rt.Execute("scene.addPrimitive", map[string]any{"kind": "cube"}); err != nil {
		t.Fatal(err)
	}
	m := Model{rt: rt}
	m.width = 120
	m.height = 40
	m.syncCursor()
	return m
}

func TestModel_ResolveGoalStagesPlan(t *testing.T) {
	m := testModel(t)
	m.resolveGoal("bounce")

	if m.mode != modeReview {
		t.Fatalf("expected review mode, got %d", m.mode)
	}
	if m.pending == nil || m.pendingDiff == nil {
		t.Fatal("staged plan must carry a diff")
	}
	if m.planView == "" {
		t.Error("review panel should be rendered")
	}
}

func TestModel_ResolveGoalUnsupported(t *testing.T) {
	m := testModel(t)
	m.resolveGoal("make it sing opera")

	if m.mode == modeReview || m.pending != nil {
		t.Error("unsupported goal must not stage a plan")
	}
	if !m.statusErr || m.status == "" {
		t.Error("error should land in the status line")
	}
}

func TestModel_ResolveScriptStagesPlan(t *testing.T) {
	m := testModel(t)
	m.resolveScript("select \"obj_cube_1\"\nduration 2\nkey position y at 1 = 0.5")

	if m.mode != modeReview || m.pending == nil {
		t.Fatal("valid script must stage a plan")
	}
	// Nothing is applied until confirmed.
	if tracks := m.rt.ExportDocument().Clip.Tracks; len(tracks) != 0 {
		t.Error("staging must not mutate the scene")
	}
}

func TestModel_ClearPendingReturnsToBrowse(t *testing.T) {
	m := testModel(t)
	m.resolveGoal("spin")
	m.clearPending()

	if m.mode != modeBrowse || m.pending != nil || m.planView != "" {
		t.Errorf("clearPending must reset review state: %+v", m.mode)
	}
}

func TestModel_CursorFollowsSelection(t *testing.T) {
	m := testModel(t)
	if _, err := m.rt.Execute("scene.addPrimitive", map[string]any{"kind": "sphere"}); err != nil {
		t.Fatal(err)
	}
	m.syncCursor()

	refs := m.rt.ObjectRefs()
	if refs[m.cursor].ID != m.rt.SelectedObjectID() {
		t.Errorf("cursor %d does not point at selection %q", m.cursor, m.rt.SelectedObjectID())
	}
}

func TestModel_ViewRendersScene(t *testing.T) {
	m := testModel(t)
	view := m.View()
	if !strings.Contains(view, "motionforge") {
		t.Error("header missing")
	}
	if !strings.Contains(view, "Cube 1") {
		t.Error("scene panel should list the cube")
	}
}
