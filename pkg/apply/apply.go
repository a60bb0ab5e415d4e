// Package apply executes a plan's mutating steps against a runtime
// adapter with whole-batch-or-nothing semantics.
package apply

import (
	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/runtime"
)

// Adapter is the slice of the runtime the engine needs. *runtime.Runtime
// satisfies it.
type Adapter interface {
	Capture() runtime.Snapshot
	Restore(runtime.Snapshot)
	Execute(action string, input map[string]any) (*runtime.Result, error)
}

// Result reports an apply. When OK is false the adapter's state equals
// its state before the call: the pre-apply snapshot was restored, undoing
// every step that had already succeeded in this batch.
type Result struct {
	OK               bool            `json:"ok"`
	CommandsExecuted int             `json:"commandsExecuted"`
	Events           []runtime.Event `json:"events,omitempty"`
	FailedStepID     string          `json:"failedStepId,omitempty"`
	Err              error           `json:"-"`
}

// Plan applies the mutate steps of p in list order. Inspect steps are
// informational (consumed by the preview phase) and skipped here. A
// caller can never observe a partially-applied plan.
func Plan(p *plan.Plan, adapter Adapter) Result {
	snapshot := adapter.Capture()

	var result Result
	for _, step := range p.Steps {
		if step.Type != plan.StepMutate {
			continue
		}
		res, err := adapter.Execute(step.Command.Action, step.Command.Input)
		if err != nil {
			adapter.Restore(snapshot)
			return Result{
				CommandsExecuted: result.CommandsExecuted,
				FailedStepID:     step.ID,
				Err:              err,
			}
		}
		result.CommandsExecuted++
		result.Events = append(result.Events, res.Events...)
	}
	result.OK = true
	return result
}
