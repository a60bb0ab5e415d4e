package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return tc.Text
}

func TestHandleCompileScript_MissingScript(t *testing.T) {
	s := NewSession()
	result, err := s.HandleCompileScript(context.Background(), toolReq(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for missing script")
	}
}

func TestHandleCompileScript_UnknownObject(t *testing.T) {
	s := NewSession()
	result, err := s.HandleCompileScript(context.Background(), toolReq(map[string]any{
		"script": `select "obj_ghost"` + "\nkey position y at 1 = 2",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected compile failure for unknown object")
	}
	if !strings.Contains(resultText(t, result), "errors") {
		t.Error("response should carry diagnostics")
	}
}

func TestHandleExecuteThenCompile(t *testing.T) {
	s := NewSession()

	result, err := s.HandleExecute(context.Background(), toolReq(map[string]any{
		"action": "scene.addPrimitive",
		"input":  map[string]any{"kind": "cube"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("execute failed: %s", resultText(t, result))
	}

	// The object created above is visible to later compilations in the
	// same session.
	result, err = s.HandleCompileScript(context.Background(), toolReq(map[string]any{
		"script": `select "obj_cube_1"` + "\nduration 2\nkey position y at 1 = 2",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Errorf("compile should succeed: %s", resultText(t, result))
	}
}

func TestHandleExecute_ErrorPayload(t *testing.T) {
	s := NewSession()
	result, err := s.HandleExecute(context.Background(), toolReq(map[string]any{
		"action": "scene.selectByName",
		"input":  map[string]any{"name": "Ghost"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("expected error for unknown name")
	}
	if !strings.Contains(resultText(t, result), "MF_ERR_UNKNOWN_OBJECT") {
		t.Error("error payload should carry the runtime code")
	}
}

func TestHandlePlanGoal_Unsupported(t *testing.T) {
	s := NewSession()
	seedCube(t, s)

	result, err := s.HandlePlanGoal(context.Background(), toolReq(map[string]any{
		"goal": "make it sing opera",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected unsupported-goal error")
	}
	if !strings.Contains(resultText(t, result), "suggestions") {
		t.Error("unsupported goals should come with suggestions")
	}
}

func seedCube(t *testing.T, s *Session) {
	t.Helper()
	result, err := s.HandleExecute(context.Background(), toolReq(map[string]any{
		"action": "scene.addPrimitive",
		"input":  map[string]any{"kind": "cube"},
	}))
	if err != nil || result.IsError {
		t.Fatalf("seed cube: %v %v", err, result)
	}
}

func TestHandlePreview_Goal(t *testing.T) {
	s := NewSession()
	seedCube(t, s)

	result, err := s.HandlePreview(context.Background(), toolReq(map[string]any{
		"goal": "bounce",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("preview failed: %s", resultText(t, result))
	}
	text := resultText(t, result)
	for _, want := range []string{"planId", "diff", "safety"} {
		if !strings.Contains(text, want) {
			t.Errorf("preview response missing %q", want)
		}
	}
}

func TestHandleApply_ConfirmGate(t *testing.T) {
	s := NewSession()
	seedCube(t, s)

	result, err := s.HandleExecute(context.Background(), toolReq(map[string]any{
		"action": "animation.insertRecords",
		"input": map[string]any{"records": []any{
			map[string]any{"objectId": "obj_cube_1", "propertyPath": "position.y", "time": 1.0, "value": 2.0},
		}},
	}))
	if err != nil || result.IsError {
		t.Fatalf("seed keyframe: %v %v", err, result)
	}

	script := `select "obj_cube_1"` + "\nduration 5\ndelete key position y at 1"
	result, err = s.HandleApply(context.Background(), toolReq(map[string]any{
		"script": script,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("key-deleting plan without confirm must be blocked")
	}
	if !strings.Contains(resultText(t, result), "MF_ERR_CONFIRM_REQUIRED") {
		t.Error("blocked apply should name the confirm gate")
	}

	result, err = s.HandleApply(context.Background(), toolReq(map[string]any{
		"script":  script,
		"confirm": true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("confirmed apply failed: %s", resultText(t, result))
	}

	export, err := s.HandleExport(context.Background(), toolReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(resultText(t, export), "position.y") {
		t.Error("deleted keyframe still present in export")
	}
}

func TestHandleApply_AppliesScript(t *testing.T) {
	s := NewSession()
	seedCube(t, s)

	result, err := s.HandleApply(context.Background(), toolReq(map[string]any{
		"script": `select "obj_cube_1"` + "\nduration 2\nkey position y at 1 = 3",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("apply failed: %s", resultText(t, result))
	}

	export, err := s.HandleExport(context.Background(), toolReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, export), "position.y") {
		t.Error("applied keyframes should appear in the export")
	}
}

func TestHandlePreview_MissingArgs(t *testing.T) {
	s := NewSession()
	result, err := s.HandlePreview(context.Background(), toolReq(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error without goal or script")
	}
}
