package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/motionforge/motionforge/pkg/apply"
	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/planner"
	"github.com/motionforge/motionforge/pkg/preview"
	"github.com/motionforge/motionforge/pkg/runtime"
	"github.com/motionforge/motionforge/pkg/script"
	"github.com/motionforge/motionforge/pkg/walkthrough"
)

var replProjectFile string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive scene and scripting session",
	RunE:  runRepl,
}

// replSession holds the state of one interactive session. A plan stays
// pending until confirmed or discarded so destructive plans always get
// an explicit second keystroke.
type replSession struct {
	rt      *runtime.Runtime
	out     io.Writer
	pending *plan.Plan
	warns   []string
}

func runRepl(cmd *cobra.Command, args []string) error {
	rt, err := runtimeFor(replProjectFile)
	if err != nil {
		return err
	}
	s := &replSession{rt: rt, out: os.Stdout}

	commands := []string{"add", "select", "objects", "goal", "run", "preview",
		"confirm", "discard", "undo", "redo", "load", "save", "help", "quit"}
	completer := readline.NewPrefixCompleter()
	for _, c := range commands {
		completer.Children = append(completer.Children, readline.PcItem(c))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mf> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(s.out, "motionforge repl — type 'help' for commands, 'quit' to exit.")

	for {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" || line == "q" {
			return nil
		}
		s.dispatch(line)
	}
}

func (s *replSession) prompt() string {
	if s.pending != nil {
		return "mf [pending]> "
	}
	return "mf> "
}

func (s *replSession) dispatch(line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "add":
		if rest == "" {
			rest = "cube"
		}
		s.exec("scene.addPrimitive", map[string]any{"kind": rest})
	case "select":
		s.exec("scene.selectByName", map[string]any{"name": rest})
	case "objects":
		s.listObjects()
	case "goal":
		s.stageGoal(rest)
	case "run":
		s.stageScriptFile(rest)
	case "preview":
		s.showPending()
	case "confirm":
		s.confirmPending()
	case "discard":
		s.pending = nil
		s.warns = nil
		fmt.Fprintln(s.out, "plan discarded")
	case "undo":
		s.exec("history.undo", nil)
	case "redo":
		s.exec("history.redo", nil)
	case "load":
		s.loadProject(rest)
	case "save":
		s.saveProject(rest)
	default:
		fmt.Fprintf(s.out, "unknown command %q — type 'help'\n", cmd)
	}
}

func (s *replSession) printHelp() {
	fmt.Fprintln(s.out, `commands:
  add [kind]        add a primitive (cube, sphere, plane, cylinder, cone)
  select <name>     select an object by name
  objects           list scene objects
  goal <text>       expand a goal into a pending plan
  run <file>        compile a script file into a pending plan
  preview           show the pending plan and its diff
  confirm           apply the pending plan
  discard           drop the pending plan
  undo / redo       step command history
  load <file>       load a project JSON (staged, committed if clean)
  save <file>       export the project JSON
  quit              exit`)
}

func (s *replSession) exec(action string, input map[string]any) {
	res, err := s.rt.Execute(action, input)
	if err != nil {
		fmt.Fprintf(s.out, "error: %s\n", err)
		return
	}
	for _, ev := range res.Events {
		fmt.Fprintf(s.out, "  %s #%d\n", ev.Type, ev.Seq)
	}
}

func (s *replSession) listObjects() {
	refs := s.rt.ObjectRefs()
	if len(refs) == 0 {
		fmt.Fprintln(s.out, "(empty scene)")
		return
	}
	selected := s.rt.SelectedObjectID()
	for _, o := range refs {
		marker := " "
		if o.ID == selected {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %-20s %s\n", marker, o.ID, o.Name)
	}
}

func (s *replSession) stageGoal(goal string) {
	if goal == "" {
		fmt.Fprintln(s.out, "usage: goal <text>")
		return
	}
	snap := planner.Snapshot{SelectedObjectID: s.rt.SelectedObjectID()}
	for _, o := range s.rt.ObjectRefs() {
		snap.Objects = append(snap.Objects, planner.SceneObject{ID: o.ID, Name: o.Name})
	}
	p, err := planner.GeneratePlan(planner.Input{Goal: goal}, snap)
	if err != nil {
		fmt.Fprintf(s.out, "error: %s\n", err)
		var perr *planner.Error
		if errors.As(err, &perr) && len(perr.Suggestions) > 0 {
			fmt.Fprintf(s.out, "try one of: %s\n", strings.Join(perr.Suggestions, ", "))
		}
		return
	}
	s.stage(p, nil)
}

func (s *replSession) stageScriptFile(path string) {
	if path == "" {
		fmt.Fprintln(s.out, "usage: run <script-file>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(s.out, "error: %s\n", err)
		return
	}
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
	compiled := script.Compile(string(data), ctx)
	if !compiled.OK {
		for _, e := range compiled.Errors {
			fmt.Fprintf(s.out, "error: %s\n", e)
		}
		return
	}
	var warns []string
	for _, w := range compiled.Warnings {
		warns = append(warns, w.String())
	}
	s.stage(compiled.Plan, warns)
}

func (s *replSession) stage(p *plan.Plan, warns []string) {
	s.pending = p
	s.warns = warns
	fmt.Fprintf(s.out, "staged plan %s (%d step(s)) — 'preview' to inspect, 'confirm' to apply\n",
		p.ID, len(p.Steps))
	if p.Safety.RequiresConfirm {
		fmt.Fprintf(s.out, "note: destructive plan (%s)\n", strings.Join(p.Safety.Reasons, "; "))
	}
}

func (s *replSession) showPending() {
	if s.pending == nil {
		fmt.Fprintln(s.out, "no pending plan — use 'goal' or 'run' first")
		return
	}
	diff, err := preview.Plan(s.pending, s.rt)
	if err != nil {
		fmt.Fprintf(s.out, "preview error: %s\n", err)
		return
	}
	md := walkthrough.BuildMarkdown(s.pending, diff, s.warns)
	fmt.Fprint(s.out, walkthrough.Render(md, 100))
}

func (s *replSession) confirmPending() {
	if s.pending == nil {
		fmt.Fprintln(s.out, "no pending plan — use 'goal' or 'run' first")
		return
	}
	result := apply.Plan(s.pending, s.rt)
	if result.OK {
		fmt.Fprintf(s.out, "✓ applied %s (%d command(s))\n", s.pending.ID, result.CommandsExecuted)
	} else {
		fmt.Fprintf(s.out, "✗ failed at %s after %d command(s), rolled back: %s\n",
			result.FailedStepID, result.CommandsExecuted, result.Err)
	}
	s.pending = nil
	s.warns = nil
}

func (s *replSession) loadProject(path string) {
	if path == "" {
		fmt.Fprintln(s.out, "usage: load <file>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(s.out, "error: %s\n", err)
		return
	}
	if err := s.rt.LoadProjectJSON(data, runtime.LoadOptions{Staged: true}); err != nil {
		fmt.Fprintf(s.out, "load rejected, scene unchanged: %s\n", err)
		return
	}
	if err := s.rt.CommitStagedLoad(); err != nil {
		fmt.Fprintf(s.out, "error: %s\n", err)
		return
	}
	fmt.Fprintf(s.out, "✓ loaded %s (%d object(s))\n", path, len(s.rt.ObjectRefs()))
}

func (s *replSession) saveProject(path string) {
	if path == "" {
		fmt.Fprintln(s.out, "usage: save <file>")
		return
	}
	data, err := s.rt.ExportProjectJSON()
	if err != nil {
		fmt.Fprintf(s.out, "error: %s\n", err)
		return
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		fmt.Fprintf(s.out, "error: %s\n", err)
		return
	}
	fmt.Fprintf(s.out, "✓ saved %s\n", path)
}

func init() {
	replCmd.Flags().StringVar(&replProjectFile, "in", "", "project JSON to load at startup")
	rootCmd.AddCommand(replCmd)
}
