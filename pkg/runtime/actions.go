package runtime

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/motionforge/motionforge/pkg/project"
)

// Result is what Execute hands back: the events this command emitted and
// any read-only output.
type Result struct {
	Events []Event        `json:"events"`
	Output map[string]any `json:"output,omitempty"`
}

// handlerFunc performs one action against live state. It must validate
// everything before mutating anything.
type handlerFunc func(r *Runtime, input map[string]any) (map[string]any, error)

type handlerSpec struct {
	mutating    bool
	destructive bool // requires input.confirm == true
	fn          handlerFunc
}

// handlers is the fixed action table. Closed at compile time.
var handlers = map[string]handlerSpec{
	"scene.inspect":           {fn: (*Runtime).inspectScene},
	"scene.addPrimitive":      {mutating: true, fn: (*Runtime).addPrimitive},
	"scene.duplicateSelected": {mutating: true, fn: (*Runtime).duplicateSelected},
	"scene.parent":            {mutating: true, fn: (*Runtime).parentObject},
	"scene.deleteSelected":    {mutating: true, destructive: true, fn: (*Runtime).deleteSelected},
	"scene.selectByName":      {mutating: true, fn: (*Runtime).selectByName},
	"scene.selectById":        {mutating: true, fn: (*Runtime).selectByID},
	"scene.clearUserObjects":  {mutating: true, destructive: true, fn: (*Runtime).clearUserObjects},
	"animation.insertRecords": {mutating: true, fn: (*Runtime).insertRecords},
	"animation.removeKeys":    {mutating: true, fn: (*Runtime).removeKeys},
	"animation.setDuration":   {mutating: true, fn: (*Runtime).setDuration},
	"animation.setTakes":      {mutating: true, fn: (*Runtime).setTakes},
}

// Execute dispatches one action. Destructive actions are confirm-gated;
// every mutating action lands on the undo stack; every executed action
// appends to the event log.
func (r *Runtime) Execute(action string, input map[string]any) (*Result, error) {
	if input == nil {
		input = map[string]any{}
	}

	switch action {
	case "history.undo":
		return r.execUndo()
	case "history.redo":
		return r.execRedo()
	}

	spec, ok := handlers[action]
	if !ok {
		return nil, &Error{Code: CodeUnknownAction, Message: fmt.Sprintf("unknown action %q", action)}
	}
	if spec.destructive {
		if confirmed, _ := input["confirm"].(bool); !confirmed {
			return nil, errConfirmRequired(action)
		}
	}

	if !spec.mutating {
		output, err := spec.fn(r, input)
		if err != nil {
			return nil, err
		}
		evt := r.emit(action, output)
		return &Result{Events: []Event{evt}, Output: output}, nil
	}

	before := r.st.deepCopy()
	payload, err := spec.fn(r, input)
	if err != nil {
		// Handlers validate up front, but never let a failed command
		// leave partial state behind.
		r.st = before
		return nil, err
	}
	r.history.push(&command{action: action, before: before, after: r.st.deepCopy()})
	evt := r.emit(action, payload)
	return &Result{Events: []Event{evt}, Output: payload}, nil
}

// --- scene handlers ---

var primitiveKinds = map[string]string{
	"cube":     "Cube",
	"sphere":   "Sphere",
	"plane":    "Plane",
	"cylinder": "Cylinder",
	"cone":     "Cone",
}

func (r *Runtime) inspectScene(_ map[string]any) (map[string]any, error) {
	trackCount := 0
	for _, props := range r.st.clip.tracks {
		trackCount += len(props)
	}
	objects := make([]map[string]any, 0, len(r.st.objects))
	for _, o := range r.st.objects {
		objects = append(objects, map[string]any{"id": o.ID, "name": o.Name, "kind": o.Kind})
	}
	return map[string]any{
		"objects":     objects,
		"selected":    r.st.selected,
		"durationSec": r.st.clip.durationSec,
		"fps":         r.st.clip.fps,
		"loop":        r.st.clip.loop,
		"trackCount":  trackCount,
		"takeCount":   len(r.st.clip.takes),
	}, nil
}

func (r *Runtime) addPrimitive(input map[string]any) (map[string]any, error) {
	kind, _ := input["kind"].(string)
	label, ok := primitiveKinds[kind]
	if !ok {
		return nil, errInvalidInput("unknown primitive kind %q", kind)
	}

	r.idSeq[kind]++
	n := r.idSeq[kind]
	id := fmt.Sprintf("obj_%s_%d", kind, n)
	name, _ := input["name"].(string)
	if name == "" {
		name = fmt.Sprintf("%s %d", label, n)
	}

	obj := &project.Object{
		ID:          id,
		Name:        name,
		Kind:        kind,
		Scale:       [3]float64{1, 1, 1},
		UserCreated: true,
	}
	r.st.objects = append(r.st.objects, obj)
	r.st.selected = id
	return map[string]any{"id": id, "name": name, "kind": kind}, nil
}

func (r *Runtime) duplicateSelected(_ map[string]any) (map[string]any, error) {
	src := r.st.objectByID(r.st.selected)
	if src == nil {
		return nil, errInvalidInput("nothing selected to duplicate")
	}

	r.idSeq[src.Kind]++
	dup := *src
	dup.ID = fmt.Sprintf("obj_%s_%d", src.Kind, r.idSeq[src.Kind])
	dup.Name = src.Name + " Copy"
	dup.UserCreated = true
	r.st.objects = append(r.st.objects, &dup)

	// The duplicate carries the source's animation too.
	if props, ok := r.st.clip.tracks[src.ID]; ok {
		dst := make(map[string][]project.Key, len(props))
		for path, keys := range props {
			dst[path] = append([]project.Key(nil), keys...)
		}
		r.st.clip.tracks[dup.ID] = dst
	}
	r.st.selected = dup.ID
	return map[string]any{"id": dup.ID, "sourceId": src.ID}, nil
}

func (r *Runtime) parentObject(input map[string]any) (map[string]any, error) {
	childID, _ := input["childId"].(string)
	parentID, _ := input["parentId"].(string)

	child := r.st.objectByID(childID)
	if child == nil {
		return nil, &Error{Code: CodeUnknownObject, Message: fmt.Sprintf("no object with id %q", childID)}
	}
	if parentID != "" {
		if r.st.objectByID(parentID) == nil {
			return nil, &Error{Code: CodeUnknownObject, Message: fmt.Sprintf("no object with id %q", parentID)}
		}
		// Reparenting under a descendant would cycle the graph.
		for _, id := range r.st.descendants(childID) {
			if id == parentID {
				return nil, errInvalidInput("cannot parent %q under its own descendant %q", childID, parentID)
			}
		}
	}
	child.ParentID = parentID
	return map[string]any{"childId": childID, "parentId": parentID}, nil
}

func (r *Runtime) deleteSelected(_ map[string]any) (map[string]any, error) {
	if r.st.selected == "" {
		return nil, errInvalidInput("nothing selected to delete")
	}
	doomed := r.st.descendants(r.st.selected)
	doomedSet := make(map[string]bool, len(doomed))
	for _, id := range doomed {
		doomedSet[id] = true
	}

	kept := r.st.objects[:0]
	for _, o := range r.st.objects {
		if !doomedSet[o.ID] {
			kept = append(kept, o)
		}
	}
	r.st.objects = kept
	for id := range doomedSet {
		delete(r.st.clip.tracks, id)
	}
	r.st.selected = ""
	return map[string]any{"deletedIds": doomed}, nil
}

func (r *Runtime) selectByName(input map[string]any) (map[string]any, error) {
	name, _ := input["name"].(string)
	matches := r.st.objectsByName(name)
	switch len(matches) {
	case 0:
		return nil, &Error{Code: CodeUnknownObject, Message: fmt.Sprintf("no object named %q", name)}
	case 1:
		r.st.selected = matches[0].ID
		return map[string]any{"id": matches[0].ID, "name": name}, nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = fmt.Sprintf("%s (%s)", m.Name, m.ID)
		}
		return nil, &Error{
			Code:       CodeAmbiguousName,
			Message:    fmt.Sprintf("%d objects named %q", len(matches), name),
			Candidates: names,
		}
	}
}

func (r *Runtime) selectByID(input map[string]any) (map[string]any, error) {
	id, _ := input["id"].(string)
	if r.st.objectByID(id) == nil {
		return nil, &Error{Code: CodeUnknownObject, Message: fmt.Sprintf("no object with id %q", id)}
	}
	r.st.selected = id
	return map[string]any{"id": id}, nil
}

func (r *Runtime) clearUserObjects(_ map[string]any) (map[string]any, error) {
	var cleared []string
	kept := r.st.objects[:0]
	for _, o := range r.st.objects {
		if o.UserCreated {
			cleared = append(cleared, o.ID)
			delete(r.st.clip.tracks, o.ID)
			if r.st.selected == o.ID {
				r.st.selected = ""
			}
			continue
		}
		kept = append(kept, o)
	}
	r.st.objects = kept
	// Orphan fixup: survivors parented under cleared objects float to root.
	clearedSet := make(map[string]bool, len(cleared))
	for _, id := range cleared {
		clearedSet[id] = true
	}
	for _, o := range r.st.objects {
		if clearedSet[o.ParentID] {
			o.ParentID = ""
		}
	}
	return map[string]any{"clearedIds": cleared}, nil
}

// --- animation handlers ---

var validProperty = map[string]bool{}

func init() {
	for _, group := range []string{"position", "rotation", "scale"} {
		for _, axis := range []string{"x", "y", "z"} {
			validProperty[group+"."+axis] = true
		}
	}
}

func (r *Runtime) insertRecords(input map[string]any) (map[string]any, error) {
	records, err := recordsFromInput(input["records"])
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if r.st.objectByID(rec.objectID) == nil {
			return nil, &Error{Code: CodeUnknownObject, Message: fmt.Sprintf("no object with id %q", rec.objectID)}
		}
		if !validProperty[rec.propertyPath] {
			return nil, errInvalidInput("invalid propertyPath %q", rec.propertyPath)
		}
		if !finite(rec.time) || rec.time < 0 || !finite(rec.value) {
			return nil, errInvalidInput("invalid keyframe at %v = %v", rec.time, rec.value)
		}
	}
	for _, rec := range records {
		r.st.insertKey(rec.objectID, rec.propertyPath, project.Key{
			Time:          rec.time,
			Value:         rec.value,
			Interpolation: rec.interpolation,
		})
	}
	return map[string]any{"inserted": len(records)}, nil
}

func (r *Runtime) removeKeys(input map[string]any) (map[string]any, error) {
	refs, err := refsFromInput(input["keys"])
	if err != nil {
		return nil, err
	}
	removed := 0
	for _, ref := range refs {
		if r.st.removeKey(ref.objectID, ref.propertyPath, ref.time) {
			removed++
		}
	}
	return map[string]any{"removed": removed}, nil
}

func (r *Runtime) setDuration(input map[string]any) (map[string]any, error) {
	seconds, ok := toFloat(input["seconds"])
	if !ok || !finite(seconds) || seconds <= 0 {
		return nil, errInvalidInput("seconds must be a positive finite number")
	}
	r.st.clip.durationSec = seconds
	if fps, ok := toFloat(input["fps"]); ok && fps > 0 && finite(fps) {
		r.st.clip.fps = fps
	}
	if loop, ok := input["loop"].(bool); ok {
		r.st.clip.loop = loop
	}
	return map[string]any{"seconds": seconds, "fps": r.st.clip.fps, "loop": r.st.clip.loop}, nil
}

func (r *Runtime) setTakes(input map[string]any) (map[string]any, error) {
	raw, ok := input["takes"].([]map[string]any)
	if !ok {
		if anySlice, ok2 := input["takes"].([]any); ok2 {
			raw = make([]map[string]any, 0, len(anySlice))
			for _, item := range anySlice {
				m, ok3 := item.(map[string]any)
				if !ok3 {
					return nil, errInvalidInput("takes entries must be objects")
				}
				raw = append(raw, m)
			}
		} else {
			return nil, errInvalidInput("takes must be a list")
		}
	}

	takes := make([]project.Take, 0, len(raw))
	names := make(map[string]bool, len(raw))
	for _, m := range raw {
		t := project.Take{
			ID:   str(m["id"]),
			Name: str(m["name"]),
		}
		t.StartTime, _ = toFloat(m["startTime"])
		t.EndTime, _ = toFloat(m["endTime"])

		if strings.TrimSpace(t.Name) == "" {
			return nil, &Error{Code: CodeInvalidTake, Message: "take name must not be blank"}
		}
		if t.StartTime < 0 || t.StartTime >= t.EndTime || t.EndTime > r.st.clip.durationSec {
			return nil, &Error{Code: CodeInvalidTake, Message: fmt.Sprintf(
				"take %q range [%v, %v] must satisfy 0 <= start < end <= %v",
				t.Name, t.StartTime, t.EndTime, r.st.clip.durationSec)}
		}
		norm := strings.ToLower(strings.TrimSpace(t.Name))
		if names[norm] {
			return nil, &Error{Code: CodeInvalidTake, Message: fmt.Sprintf("duplicate take name %q", t.Name)}
		}
		names[norm] = true
		takes = append(takes, t)
	}
	r.st.clip.takes = takes
	return map[string]any{"takeCount": len(takes)}, nil
}

// --- key storage helpers ---

const keyTimeEpsilon = 1e-9

func (s *state) insertKey(objectID, path string, key project.Key) {
	props := s.clip.tracks[objectID]
	if props == nil {
		props = make(map[string][]project.Key)
		s.clip.tracks[objectID] = props
	}
	keys := props[path]
	for i := range keys {
		if math.Abs(keys[i].Time-key.Time) < keyTimeEpsilon {
			keys[i] = key // same time: replace
			props[path] = keys
			return
		}
	}
	keys = append(keys, key)
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
	props[path] = keys
}

func (s *state) removeKey(objectID, path string, t float64) bool {
	props := s.clip.tracks[objectID]
	if props == nil {
		return false
	}
	keys := props[path]
	for i := range keys {
		if math.Abs(keys[i].Time-t) < keyTimeEpsilon {
			props[path] = append(keys[:i:i], keys[i+1:]...)
			if len(props[path]) == 0 {
				delete(props, path)
			}
			if len(props) == 0 {
				delete(s.clip.tracks, objectID)
			}
			return true
		}
	}
	return false
}

// --- input coercion ---

type keyRecord struct {
	objectID      string
	propertyPath  string
	time          float64
	value         float64
	interpolation string
}

type keyRef struct {
	objectID     string
	propertyPath string
	time         float64
}

func recordsFromInput(v any) ([]keyRecord, error) {
	items, err := mapSlice(v, "records")
	if err != nil {
		return nil, err
	}
	out := make([]keyRecord, 0, len(items))
	for _, m := range items {
		rec := keyRecord{
			objectID:      str(m["objectId"]),
			propertyPath:  str(m["propertyPath"]),
			interpolation: str(m["interpolation"]),
		}
		if rec.interpolation == "" {
			rec.interpolation = "linear"
		}
		rec.time, _ = toFloat(m["time"])
		rec.value, _ = toFloat(m["value"])
		out = append(out, rec)
	}
	return out, nil
}

func refsFromInput(v any) ([]keyRef, error) {
	items, err := mapSlice(v, "keys")
	if err != nil {
		return nil, err
	}
	out := make([]keyRef, 0, len(items))
	for _, m := range items {
		ref := keyRef{
			objectID:     str(m["objectId"]),
			propertyPath: str(m["propertyPath"]),
		}
		ref.time, _ = toFloat(m["time"])
		out = append(out, ref)
	}
	return out, nil
}

func mapSlice(v any, field string) ([]map[string]any, error) {
	switch items := v.(type) {
	case []map[string]any:
		return items, nil
	case []any:
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, errInvalidInput("%s entries must be objects", field)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, errInvalidInput("%s must be a list", field)
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
