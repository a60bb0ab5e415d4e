// Package preview simulates a plan against a cloned runtime and reports
// a structural change summary. Live state is provably untouched: every
// mutation runs on the clone, and the clone is discarded afterward.
package preview

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/project"
	"github.com/motionforge/motionforge/pkg/runtime"
)

// Simulator is the slice of the runtime preview needs: a deep clone to
// mutate, and JSON export on both sides of the diff.
type Simulator interface {
	Clone() *runtime.Runtime
	ExportProjectJSON() (string, error)
}

// TrackDiff is the change summary for one (objectId, property) track.
type TrackDiff struct {
	ObjectID     string `json:"objectId"`
	PropertyPath string `json:"propertyPath"`
	KeysAdded    int    `json:"keysAdded"`
	KeysRemoved  int    `json:"keysRemoved"`
	KeysChanged  int    `json:"keysChanged"`
}

// Diff aggregates per-track changes across the whole clip.
type Diff struct {
	Tracks       []TrackDiff `json:"tracks,omitempty"`
	TotalAdded   int         `json:"totalAdded"`
	TotalRemoved int         `json:"totalRemoved"`
	TotalChanged int         `json:"totalChanged"`
}

// Empty reports whether the plan would change nothing.
func (d *Diff) Empty() bool {
	return d.TotalAdded == 0 && d.TotalRemoved == 0 && d.TotalChanged == 0
}

// Plan runs p's mutate steps against a clone of sim and diffs the
// exported project JSON, restricted to animation tracks.
func Plan(p *plan.Plan, sim Simulator) (*Diff, error) {
	beforeJSON, err := sim.ExportProjectJSON()
	if err != nil {
		return nil, fmt.Errorf("export before-state: %w", err)
	}

	clone := sim.Clone()
	for _, step := range p.Steps {
		if step.Type != plan.StepMutate {
			continue
		}
		if _, err := clone.Execute(step.Command.Action, step.Command.Input); err != nil {
			return nil, fmt.Errorf("simulate step %s: %w", step.ID, err)
		}
	}

	afterJSON, err := clone.ExportProjectJSON()
	if err != nil {
		return nil, fmt.Errorf("export after-state: %w", err)
	}
	return DiffProjects([]byte(beforeJSON), []byte(afterJSON))
}

// DiffProjects compares the animation tracks of two exported projects.
func DiffProjects(before, after []byte) (*Diff, error) {
	var beforeDoc, afterDoc project.Document
	if err := json.Unmarshal(before, &beforeDoc); err != nil {
		return nil, fmt.Errorf("parse before-state: %w", err)
	}
	if err := json.Unmarshal(after, &afterDoc); err != nil {
		return nil, fmt.Errorf("parse after-state: %w", err)
	}

	beforeTracks := trackMap(&beforeDoc)
	afterTracks := trackMap(&afterDoc)

	ids := make(map[trackKey]bool)
	for id := range beforeTracks {
		ids[id] = true
	}
	for id := range afterTracks {
		ids[id] = true
	}

	diff := &Diff{}
	for id := range ids {
		td := diffTrack(id.object, id.property, beforeTracks[id], afterTracks[id])
		if td.KeysAdded == 0 && td.KeysRemoved == 0 && td.KeysChanged == 0 {
			continue
		}
		diff.Tracks = append(diff.Tracks, td)
		diff.TotalAdded += td.KeysAdded
		diff.TotalRemoved += td.KeysRemoved
		diff.TotalChanged += td.KeysChanged
	}
	sort.Slice(diff.Tracks, func(i, j int) bool {
		a, b := diff.Tracks[i], diff.Tracks[j]
		if a.ObjectID != b.ObjectID {
			return a.ObjectID < b.ObjectID
		}
		return a.PropertyPath < b.PropertyPath
	})
	return diff, nil
}

type trackKey struct{ object, property string }

func trackMap(doc *project.Document) map[trackKey][]project.Key {
	out := make(map[trackKey][]project.Key, len(doc.Clip.Tracks))
	for _, tr := range doc.Clip.Tracks {
		out[trackKey{tr.ObjectID, tr.PropertyPath}] = tr.Keys
	}
	return out
}

func diffTrack(objectID, property string, before, after []project.Key) TrackDiff {
	td := TrackDiff{ObjectID: objectID, PropertyPath: property}
	beforeByTime := make(map[float64]project.Key, len(before))
	for _, k := range before {
		beforeByTime[k.Time] = k
	}
	afterByTime := make(map[float64]project.Key, len(after))
	for _, k := range after {
		afterByTime[k.Time] = k
	}

	for t, ak := range afterByTime {
		bk, existed := beforeByTime[t]
		switch {
		case !existed:
			td.KeysAdded++
		case bk.Value != ak.Value || bk.Interpolation != ak.Interpolation:
			td.KeysChanged++
		}
	}
	for t := range beforeByTime {
		if _, kept := afterByTime[t]; !kept {
			td.KeysRemoved++
		}
	}
	return td
}
