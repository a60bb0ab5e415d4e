// Package runtime implements the stateful command bus: the single
// authority over the scene graph, animation clip, assets, undo/redo
// history, and the deterministic event log. All mutation goes through
// Execute; snapshots and clones are read-only once taken.
package runtime

import (
	"sort"

	"github.com/motionforge/motionforge/pkg/project"
)

// Event is one entry of the per-instance event log. Seq is monotonic and
// never reused or reordered.
type Event struct {
	Seq     int64          `json:"seq"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// state is the mutable world the command bus guards. Everything in here
// is owned exclusively by one Runtime; deep copies never alias.
type state struct {
	objects  []*project.Object
	selected string
	clip     clipState
	assets   []project.Asset
}

type clipState struct {
	durationSec float64
	fps         float64
	loop        bool
	// objectID -> propertyPath -> keys sorted by time
	tracks map[string]map[string][]project.Key
	takes  []project.Take
}

// Runtime is one command-bus instance. Not safe for concurrent use: one
// in-flight command at a time per instance.
type Runtime struct {
	st     *state
	seq    int64
	events []Event

	history *history
	staged  *state
	idSeq   map[string]int // primitive kind -> counter for generated ids
	trace   *TraceWriter
}

// New creates an empty runtime.
func New() *Runtime {
	return &Runtime{
		st:      newState(),
		history: &history{},
		idSeq:   make(map[string]int),
	}
}

func newState() *state {
	return &state{
		clip: clipState{
			durationSec: 5,
			fps:         30,
			tracks:      make(map[string]map[string][]project.Key),
		},
	}
}

// SetTrace attaches a hash-chained trace writer; every emitted event is
// appended to it.
func (r *Runtime) SetTrace(tw *TraceWriter) { r.trace = tw }

// Events returns the event log in emission order.
func (r *Runtime) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Runtime) emit(eventType string, payload map[string]any) Event {
	r.seq++
	evt := Event{Seq: r.seq, Type: eventType, Payload: payload}
	r.events = append(r.events, evt)
	if r.trace != nil {
		// Trace write failures do not fail commands; the in-memory log
		// remains authoritative.
		_ = r.trace.Write(evt)
	}
	return evt
}

// Snapshot is an opaque, deeply independent copy of runtime state used
// for rollback and diff simulation.
type Snapshot struct {
	st *state
}

// Capture takes a snapshot of the current state. The snapshot shares no
// mutable substructure with the live runtime.
func (r *Runtime) Capture() Snapshot {
	return Snapshot{st: r.st.deepCopy()}
}

// Restore replaces live state with a copy of the snapshot. The snapshot
// stays valid and unchanged.
func (r *Runtime) Restore(s Snapshot) {
	r.st = s.st.deepCopy()
}

// Clone returns an independent runtime with identical scene/clip state,
// an empty history, and a fresh event sequence. Mutating the clone can
// never touch the original; that property is what makes preview safe.
func (r *Runtime) Clone() *Runtime {
	c := New()
	c.st = r.st.deepCopy()
	for k, v := range r.idSeq {
		c.idSeq[k] = v
	}
	return c
}

func (s *state) deepCopy() *state {
	c := &state{
		selected: s.selected,
		clip: clipState{
			durationSec: s.clip.durationSec,
			fps:         s.clip.fps,
			loop:        s.clip.loop,
			tracks:      make(map[string]map[string][]project.Key, len(s.clip.tracks)),
		},
	}
	c.objects = make([]*project.Object, len(s.objects))
	for i, o := range s.objects {
		dup := *o
		c.objects[i] = &dup
	}
	for objID, props := range s.clip.tracks {
		dst := make(map[string][]project.Key, len(props))
		for path, keys := range props {
			dst[path] = append([]project.Key(nil), keys...)
		}
		c.clip.tracks[objID] = dst
	}
	c.clip.takes = append([]project.Take(nil), s.clip.takes...)
	c.assets = append([]project.Asset(nil), s.assets...)
	return c
}

// --- lookup helpers ---

func (s *state) objectByID(id string) *project.Object {
	for _, o := range s.objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (s *state) objectsByName(name string) []*project.Object {
	var out []*project.Object
	for _, o := range s.objects {
		if o.Name == name {
			out = append(out, o)
		}
	}
	return out
}

// descendants returns ids of the object and everything parented under it.
func (s *state) descendants(rootID string) []string {
	out := []string{rootID}
	for i := 0; i < len(out); i++ {
		for _, o := range s.objects {
			if o.ParentID == out[i] {
				out = append(out, o.ID)
			}
		}
	}
	return out
}

// ObjectRefs lists (id, name) pairs sorted by id, for script contexts
// and planner snapshots.
func (r *Runtime) ObjectRefs() []struct{ ID, Name string } {
	out := make([]struct{ ID, Name string }, 0, len(r.st.objects))
	for _, o := range r.st.objects {
		out = append(out, struct{ ID, Name string }{o.ID, o.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SelectedObjectID returns the current selection ("" when nothing is
// selected).
func (r *Runtime) SelectedObjectID() string { return r.st.selected }

// ClipDuration returns the current clip duration in seconds.
func (r *Runtime) ClipDuration() float64 { return r.st.clip.durationSec }

// ClipFPS returns the current clip frame rate.
func (r *Runtime) ClipFPS() float64 { return r.st.clip.fps }
