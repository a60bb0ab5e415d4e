package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/motionforge/motionforge/pkg/apply"
	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/planner"
	"github.com/motionforge/motionforge/pkg/preview"
	"github.com/motionforge/motionforge/pkg/runtime"
	"github.com/motionforge/motionforge/pkg/script"
	"github.com/motionforge/motionforge/pkg/walkthrough"
)

type uiMode int

const (
	modeBrowse uiMode = iota
	modePrompt
	modeReview
)

type promptKind int

const (
	promptGoal promptKind = iota
	promptScript
)

// Model is the top-level Bubble Tea model.
type Model struct {
	rt *runtime.Runtime

	mode   uiMode
	prompt promptKind
	input  textinput.Model

	cursor int // object list cursor

	pending      *plan.Plan
	pendingDiff  *preview.Diff
	pendingWarns []string
	planView     string // rendered walkthrough for the review panel

	status    string
	statusErr bool

	width  int
	height int
}

// Config holds the parameters needed to launch the TUI.
type Config struct {
	Runtime *runtime.Runtime
}

// Run starts the Bubble Tea program over the given runtime (a fresh one
// when nil).
func Run(cfg Config) error {
	rt := cfg.Runtime
	if rt == nil {
		rt = runtime.New()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 512

	m := Model{rt: rt, input: ti}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeReview:
			return m.updateReview(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Goal):
		m.mode = modePrompt
		m.prompt = promptGoal
		m.input.Placeholder = "spin the cube for 2 seconds"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Script):
		m.mode = modePrompt
		m.prompt = promptScript
		m.input.Placeholder = `select "Cube"; duration 2; key position y at 1 = 0.5`
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Add):
		m.runCommand("scene.addPrimitive", map[string]any{"kind": "cube"})
		return m, nil

	case key.Matches(msg, keys.Undo):
		m.runCommand("history.undo", nil)
		return m, nil

	case key.Matches(msg, keys.Redo):
		m.runCommand("history.redo", nil)
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.selectCursor()
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.rt.ObjectRefs())-1 {
			m.cursor++
			m.selectCursor()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.mode = modeBrowse
		if text == "" {
			return m, nil
		}
		if m.prompt == promptGoal {
			m.resolveGoal(text)
		} else {
			// Single-line entry: semicolons separate statements.
			m.resolveScript(strings.ReplaceAll(text, ";", "\n"))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Confirm):
		result := apply.Plan(m.pending, m.rt)
		if result.OK {
			m.setStatus(fmt.Sprintf("%s applied %s (%d command(s))",
				GlyphApplied, m.pending.ID, result.CommandsExecuted), false)
		} else {
			m.setStatus(fmt.Sprintf("%s apply failed at %s, rolled back: %s",
				GlyphBlocked, result.FailedStepID, result.Err), true)
		}
		m.clearPending()
		return m, nil

	case key.Matches(msg, keys.Discard):
		m.setStatus("plan discarded", false)
		m.clearPending()
		return m, nil
	}
	return m, nil
}

// resolveGoal expands a goal into a pending plan for review.
func (m *Model) resolveGoal(goal string) {
	snap := planner.Snapshot{SelectedObjectID: m.rt.SelectedObjectID()}
	for _, o := range m.rt.ObjectRefs() {
		snap.Objects = append(snap.Objects, planner.SceneObject{ID: o.ID, Name: o.Name})
	}
	p, err := planner.GeneratePlan(planner.Input{Goal: goal}, snap)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.stagePlan(p, nil)
}

// resolveScript compiles script text into a pending plan for review.
func (m *Model) resolveScript(text string) {
	ctx := script.Context{
		Defaults: script.Defaults{
			FPS:         m.rt.ClipFPS(),
			DurationSec: m.rt.ClipDuration(),
		},
		SelectedObjectID: m.rt.SelectedObjectID(),
	}
	for _, o := range m.rt.ObjectRefs() {
		ctx.AvailableObjects = append(ctx.AvailableObjects, script.ObjectRef{ID: o.ID, Name: o.Name})
	}
	compiled := script.Compile(text, ctx)
	if !compiled.OK {
		m.setStatus(compiled.Errors[0].String(), true)
		return
	}
	var warns []string
	for _, w := range compiled.Warnings {
		warns = append(warns, w.String())
	}
	m.stagePlan(compiled.Plan, warns)
}

// stagePlan previews the plan and switches to review mode.
func (m *Model) stagePlan(p *plan.Plan, warns []string) {
	diff, err := preview.Plan(p, m.rt)
	if err != nil {
		m.setStatus(fmt.Sprintf("preview: %s", err), true)
		return
	}
	m.pending = p
	m.pendingDiff = diff
	m.pendingWarns = warns
	md := walkthrough.BuildMarkdown(p, diff, warns)
	m.planView = walkthrough.Render(md, m.planPanelWidth()-4)
	m.mode = modeReview
	m.status = ""
}

func (m *Model) clearPending() {
	m.pending = nil
	m.pendingDiff = nil
	m.pendingWarns = nil
	m.planView = ""
	m.mode = modeBrowse
}

func (m *Model) runCommand(action string, input map[string]any) {
	res, err := m.rt.Execute(action, input)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	if len(res.Events) > 0 {
		ev := res.Events[len(res.Events)-1]
		m.setStatus(fmt.Sprintf("%s #%d", ev.Type, ev.Seq), false)
	}
	m.syncCursor()
}

// selectCursor makes the runtime selection follow the list cursor.
func (m *Model) selectCursor() {
	refs := m.rt.ObjectRefs()
	if m.cursor >= 0 && m.cursor < len(refs) {
		_, _ = m.rt.Execute("scene.selectById", map[string]any{"id": refs[m.cursor].ID})
	}
}

// syncCursor moves the cursor to the runtime's selected object after
// commands that change selection.
func (m *Model) syncCursor() {
	selected := m.rt.SelectedObjectID()
	for i, o := range m.rt.ObjectRefs() {
		if o.ID == selected {
			m.cursor = i
			return
		}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) planPanelWidth() int {
	w := m.width - 34
	if w < 40 {
		w = 40
	}
	return w
}

// --- View ---

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render("motionforge"),
		clipBadgeStyle.Render(fmt.Sprintf("%.2gs @ %.2g fps", m.rt.ClipDuration(), m.rt.ClipFPS())),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.objectPanel(), m.rightPanel())

	var bottom string
	switch {
	case m.mode == modePrompt:
		label := "goal"
		if m.prompt == promptScript {
			label = "script"
		}
		bottom = panelTitle.Render(label) + "\n" + m.input.View()
	case m.status != "":
		if m.statusErr {
			bottom = errorStyle.Render(m.status)
		} else {
			bottom = statusOKStyle.Render(m.status)
		}
	}

	return strings.Join([]string{
		header,
		body,
		bottom,
		keyBarStyle.Render(keyBarText(m.mode)),
	}, "\n")
}

func (m Model) objectPanel() string {
	refs := m.rt.ObjectRefs()
	selected := m.rt.SelectedObjectID()

	var lines []string
	for i, o := range refs {
		glyph := GlyphObject
		style := objectNormal
		if o.ID == selected {
			glyph = GlyphSelected
			style = objectSelected
		}
		line := fmt.Sprintf("%s %s", glyph, o.Name)
		if i == m.cursor {
			line = "• " + line
		} else {
			line = "  " + line
		}
		lines = append(lines, style.Render(line))
	}
	if len(lines) == 0 {
		lines = append(lines, keyDescStyle.Render("  (empty scene — press a)"))
	}

	content := panelTitle.Render("Scene") + "\n" + strings.Join(lines, "\n")
	return panelBorder.Width(30).Height(m.bodyHeight()).Render(content)
}

func (m Model) rightPanel() string {
	var content string
	if m.mode == modeReview && m.pending != nil {
		content = m.planView
		if m.pending.Safety.RequiresConfirm {
			content += "\n" + confirmBannerStyle.Render("destructive plan — press y to confirm")
		} else {
			content += "\n" + statusWarnStyle.Render("press y to apply, n to discard")
		}
	} else {
		content = panelTitle.Render("Plan") + "\n" +
			keyDescStyle.Render("press g to describe a goal, s to enter a script") + "\n\n" +
			keyDescStyle.Render(m.historyLine())
	}
	return panelBorder.Width(m.planPanelWidth()).Height(m.bodyHeight()).Render(content)
}

func (m Model) historyLine() string {
	undo, redo := m.rt.HistoryDepth()
	return fmt.Sprintf("history: %d undoable, %d redoable", undo, redo)
}

func (m Model) bodyHeight() int {
	h := m.height - 5
	if h < 8 {
		h = 8
	}
	return h
}
