// Package mcp exposes the scripting core to AI agents over the Model
// Context Protocol. All tools share one session runtime so a sequence
// of calls behaves like one editing session.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/motionforge/motionforge/pkg/apply"
	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/planner"
	"github.com/motionforge/motionforge/pkg/preview"
	"github.com/motionforge/motionforge/pkg/runtime"
	"github.com/motionforge/motionforge/pkg/script"
)

// Session is the shared scene state behind the MCP tools. A mutex keeps
// concurrent tool calls from interleaving mutations.
type Session struct {
	mu sync.Mutex
	rt *runtime.Runtime
}

func NewSession() *Session {
	return &Session{rt: runtime.New()}
}

// HandleCompileScript implements the mf/compile-script tool.
func (s *Session) HandleCompileScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, _ := args["script"].(string)
	if text == "" {
		return errorResult("script argument is required"), nil
	}

	s.mu.Lock()
	compiled := script.Compile(text, s.scriptContext())
	s.mu.Unlock()

	response := map[string]any{
		"ok":       compiled.OK,
		"warnings": diagMessages(compiled.Warnings),
	}
	if compiled.OK {
		response["plan"] = compiled.Plan
		response["summary"] = compiled.PlanSummary
	} else {
		response["errors"] = diagMessages(compiled.Errors)
	}
	return jsonResult(response, !compiled.OK), nil
}

// HandlePlanGoal implements the mf/plan-goal tool.
func (s *Session) HandlePlanGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	goal, _ := args["goal"].(string)
	if goal == "" {
		return errorResult("goal argument is required"), nil
	}

	s.mu.Lock()
	p, err := planner.GeneratePlan(planner.Input{
		Goal:        goal,
		Constraints: constraintsFromArgs(args),
	}, s.snapshot())
	s.mu.Unlock()

	if err != nil {
		return plannerErrorResult(err), nil
	}
	return jsonResult(map[string]any{"plan": p}, false), nil
}

// HandlePreview implements the mf/preview tool.
func (s *Session) HandlePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, result := s.resolvePlan(req.GetArguments())
	if result != nil {
		return result, nil
	}

	s.mu.Lock()
	diff, err := preview.Plan(p, s.rt)
	s.mu.Unlock()
	if err != nil {
		return errorResult(fmt.Sprintf("preview: %s", err)), nil
	}
	return jsonResult(map[string]any{
		"planId": p.ID,
		"safety": p.Safety,
		"diff":   diff,
	}, false), nil
}

// HandleApply implements the mf/apply tool.
func (s *Session) HandleApply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	p, result := s.resolvePlan(args)
	if result != nil {
		return result, nil
	}

	confirm, _ := args["confirm"].(bool)
	if p.Safety.RequiresConfirm && !confirm {
		return jsonResult(map[string]any{
			"error":   runtime.CodeConfirmRequired,
			"reasons": p.Safety.Reasons,
		}, true), nil
	}

	s.mu.Lock()
	applied := apply.Plan(p, s.rt)
	s.mu.Unlock()

	response := map[string]any{
		"ok":               applied.OK,
		"planId":           p.ID,
		"commandsExecuted": applied.CommandsExecuted,
	}
	if !applied.OK {
		response["failedStepId"] = applied.FailedStepID
		response["error"] = applied.Err.Error()
		response["rolledBack"] = true
	}
	return jsonResult(response, !applied.OK), nil
}

// HandleExecute implements the mf/execute tool.
func (s *Session) HandleExecute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	action, _ := args["action"].(string)
	if action == "" {
		return errorResult("action argument is required"), nil
	}
	input, _ := args["input"].(map[string]any)

	s.mu.Lock()
	res, err := s.rt.Execute(action, input)
	s.mu.Unlock()

	if err != nil {
		var rtErr *runtime.Error
		if errors.As(err, &rtErr) {
			response := map[string]any{"error": rtErr.Code, "message": rtErr.Message}
			if len(rtErr.Candidates) > 0 {
				response["candidates"] = rtErr.Candidates
			}
			return jsonResult(response, true), nil
		}
		return errorResult(err.Error()), nil
	}

	response := map[string]any{"ok": true, "events": res.Events}
	if res.Output != nil {
		response["output"] = res.Output
	}
	return jsonResult(response, false), nil
}

// HandleExport implements the mf/export tool.
func (s *Session) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	data, err := s.rt.ExportProjectJSON()
	s.mu.Unlock()
	if err != nil {
		return errorResult(fmt.Sprintf("export: %s", err)), nil
	}
	return textResult(data), nil
}

// resolvePlan turns the goal or script argument into a plan. The second
// return value is non-nil when resolution failed and carries the error
// payload for the caller.
func (s *Session) resolvePlan(args map[string]any) (*plan.Plan, *mcp.CallToolResult) {
	goal, _ := args["goal"].(string)
	text, _ := args["script"].(string)

	switch {
	case text != "":
		s.mu.Lock()
		compiled := script.Compile(text, s.scriptContext())
		s.mu.Unlock()
		if !compiled.OK {
			return nil, jsonResult(map[string]any{"errors": diagMessages(compiled.Errors)}, true)
		}
		return compiled.Plan, nil
	case goal != "":
		s.mu.Lock()
		p, err := planner.GeneratePlan(planner.Input{Goal: goal}, s.snapshot())
		s.mu.Unlock()
		if err != nil {
			return nil, plannerErrorResult(err)
		}
		return p, nil
	default:
		return nil, errorResult("either a goal or a script argument is required")
	}
}

// scriptContext snapshots clip defaults and objects for the compiler.
// Caller holds the session lock.
func (s *Session) scriptContext() script.Context {
	ctx := script.Context{
		Defaults: script.Defaults{
			FPS:         s.rt.ClipFPS(),
			DurationSec: s.rt.ClipDuration(),
		},
		SelectedObjectID: s.rt.SelectedObjectID(),
	}
	for _, o := range s.rt.ObjectRefs() {
		ctx.AvailableObjects = append(ctx.AvailableObjects, script.ObjectRef{ID: o.ID, Name: o.Name})
	}
	return ctx
}

// snapshot mirrors the scene for the planner. Caller holds the lock.
func (s *Session) snapshot() planner.Snapshot {
	snap := planner.Snapshot{SelectedObjectID: s.rt.SelectedObjectID()}
	for _, o := range s.rt.ObjectRefs() {
		snap.Objects = append(snap.Objects, planner.SceneObject{ID: o.ID, Name: o.Name})
	}
	return snap
}

func constraintsFromArgs(args map[string]any) planner.Constraints {
	var c planner.Constraints
	if v, ok := args["duration"].(float64); ok {
		c.DurationSec = v
	}
	if v, ok := args["fps"].(float64); ok {
		c.FPS = v
	}
	return c
}

func plannerErrorResult(err error) *mcp.CallToolResult {
	var perr *planner.Error
	if errors.As(err, &perr) {
		response := map[string]any{"error": perr.Code, "message": perr.Message}
		if len(perr.Suggestions) > 0 {
			response["suggestions"] = perr.Suggestions
		}
		return jsonResult(response, true)
	}
	return errorResult(err.Error())
}

func diagMessages(diags []script.Diagnostic) []string {
	msgs := make([]string, 0, len(diags))
	for _, d := range diags {
		msgs = append(msgs, d.String())
	}
	return msgs
}

func jsonResult(v any, isErr bool) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("marshal response: %s", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: isErr,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(strings.TrimSpace(msg))},
		IsError: true,
	}
}
