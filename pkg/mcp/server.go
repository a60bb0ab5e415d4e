package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing the motionforge tools over a
// single shared session runtime.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"motionforge",
		version,
		server.WithToolCapabilities(true),
	)
	sess := NewSession()

	s.AddTool(
		mcp.NewTool("mf/compile-script",
			mcp.WithDescription("Compile an animation DSL script into a deterministic plan without executing it"),
			mcp.WithString("script", mcp.Required(), mcp.Description("Script text to compile")),
		),
		sess.HandleCompileScript,
	)

	s.AddTool(
		mcp.NewTool("mf/plan-goal",
			mcp.WithDescription("Expand a natural-language animation goal into a plan against the session scene"),
			mcp.WithString("goal", mcp.Required(), mcp.Description("Goal phrase, e.g. 'idle loop then recoil'")),
			mcp.WithNumber("duration", mcp.Description("Clip duration in seconds (optional)")),
			mcp.WithNumber("fps", mcp.Description("Clip frame rate (optional)")),
		),
		sess.HandlePlanGoal,
	)

	s.AddTool(
		mcp.NewTool("mf/preview",
			mcp.WithDescription("Preview the keyframe diff a goal or script would cause, without mutating the session"),
			mcp.WithString("goal", mcp.Description("Goal phrase to preview")),
			mcp.WithString("script", mcp.Description("Script text to preview")),
		),
		sess.HandlePreview,
	)

	s.AddTool(
		mcp.NewTool("mf/apply",
			mcp.WithDescription("Atomically apply a goal or script to the session scene (rolls back on any failure)"),
			mcp.WithString("goal", mcp.Description("Goal phrase to apply")),
			mcp.WithString("script", mcp.Description("Script text to apply")),
			mcp.WithBoolean("confirm", mcp.Description("Required for destructive plans")),
		),
		sess.HandleApply,
	)

	s.AddTool(
		mcp.NewTool("mf/execute",
			mcp.WithDescription("Execute a single runtime command, e.g. scene.addPrimitive or history.undo"),
			mcp.WithString("action", mcp.Required(), mcp.Description("Command action name")),
			mcp.WithObject("input", mcp.Description("Command input payload")),
		),
		sess.HandleExecute,
	)

	s.AddTool(
		mcp.NewTool("mf/export",
			mcp.WithDescription("Export the session project as schema-valid JSON"),
		),
		sess.HandleExport,
	)

	return s
}
