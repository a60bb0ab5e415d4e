package runtime

// command is one undoable mutation. Rather than per-action inverse
// logic, each command holds deep copies of the state on both sides of
// the mutation; undo/redo swap them in. That makes the symmetry
// invariant (redo(undo(x)) == x, selection and parenting included)
// structural rather than something every handler must re-earn.
type command struct {
	action string
	before *state
	after  *state
}

type history struct {
	undo []*command
	redo []*command
}

// push records a completed mutation and invalidates the redo branch.
func (h *history) push(c *command) {
	h.undo = append(h.undo, c)
	h.redo = nil
}

func (r *Runtime) execUndo() (*Result, error) {
	h := r.history
	if len(h.undo) == 0 {
		return nil, &Error{Code: CodeHistoryEmpty, Message: "nothing to undo"}
	}
	c := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, c)

	r.st = c.before.deepCopy()
	evt := r.emit("history.undo", map[string]any{"action": c.action})
	return &Result{Events: []Event{evt}, Output: map[string]any{"action": c.action}}, nil
}

func (r *Runtime) execRedo() (*Result, error) {
	h := r.history
	if len(h.redo) == 0 {
		return nil, &Error{Code: CodeHistoryEmpty, Message: "nothing to redo"}
	}
	c := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, c)

	r.st = c.after.deepCopy()
	evt := r.emit("history.redo", map[string]any{"action": c.action})
	return &Result{Events: []Event{evt}, Output: map[string]any{"action": c.action}}, nil
}

// HistoryDepth reports (undoable, redoable) counts.
func (r *Runtime) HistoryDepth() (int, int) {
	return len(r.history.undo), len(r.history.redo)
}
