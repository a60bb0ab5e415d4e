// Package plan defines the executable plan types shared by the script
// compiler, the recipe planner, and the apply/preview engines.
package plan

// StepType distinguishes read-only inspection from state mutation.
type StepType string

const (
	StepInspect StepType = "inspect"
	StepMutate  StepType = "mutate"
)

// Command is the action a step dispatches against the runtime.
type Command struct {
	Action string         `json:"action"`
	Input  map[string]any `json:"input,omitempty"`
}

// Step is one ordered entry of a Plan. Inspect steps are informational
// and skipped at apply time; mutate steps are the only steps with
// observable side effects.
type Step struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Type      StepType `json:"type"`
	Command   Command  `json:"command"`
	Rationale string   `json:"rationale,omitempty"`
}

// Safety is the confirm-gate assessment attached to a compiled plan.
type Safety struct {
	RequiresConfirm bool     `json:"requiresConfirm"`
	Reasons         []string `json:"reasons,omitempty"`
}

// KeyframeRecord is one keyframe insert. PropertyPath is
// {position,rotation,scale}.{x,y,z}; rotation values are radians.
type KeyframeRecord struct {
	ObjectID      string  `json:"objectId"`
	PropertyPath  string  `json:"propertyPath"`
	Time          float64 `json:"time"`
	Value         float64 `json:"value"`
	Interpolation string  `json:"interpolation"`
}

// KeyRef identifies one keyframe for deletion.
type KeyRef struct {
	ObjectID     string  `json:"objectId"`
	PropertyPath string  `json:"propertyPath"`
	Time         float64 `json:"time"`
}

// Take is a named sub-range of the clip timeline.
type Take struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// Plan is an ordered, immutable list of steps once built.
type Plan struct {
	ID      string `json:"id"`
	Goal    string `json:"goal,omitempty"`
	Steps   []Step `json:"steps"`
	Safety  Safety `json:"safety"`
	Summary string `json:"summary,omitempty"`
}

// MutateSteps returns the mutate steps in plan order.
func (p *Plan) MutateSteps() []Step {
	var out []Step
	for _, s := range p.Steps {
		if s.Type == StepMutate {
			out = append(out, s)
		}
	}
	return out
}
