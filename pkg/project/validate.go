package project

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	schemaOnce sync.Once
	schema     *sjsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*sjsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaJSON, err := GenerateJSONSchema()
		if err != nil {
			schemaErr = err
			return
		}
		var schemaDoc any
		if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
			schemaErr = fmt.Errorf("unmarshal schema: %w", err)
			return
		}
		c := sjsonschema.NewCompiler()
		if err := c.AddResource("project-v1.json", schemaDoc); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = c.Compile("project-v1.json")
	})
	return schema, schemaErr
}

// Parse validates raw project JSON against the schema plus referential
// rules, then decodes it. Nothing is mutated on failure, which is what
// lets staged loads stay all-or-nothing.
func Parse(data []byte) (*Document, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile project schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("parse project JSON: %w", err)
	}
	if err := sch.Validate(instance); err != nil {
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			causes := flatten(ve)
			msgs := make([]string, 0, len(causes))
			for _, c := range causes {
				msgs = append(msgs, fmt.Sprintf("%s: %v", strings.Join(c.InstanceLocation, "/"), c.ErrorKind))
			}
			return nil, fmt.Errorf("project schema violation: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("project schema violation: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if err := checkReferences(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// checkReferences enforces the rules the schema cannot express.
func checkReferences(doc *Document) error {
	ids := make(map[string]bool, len(doc.Scene.Objects))
	for _, o := range doc.Scene.Objects {
		if ids[o.ID] {
			return fmt.Errorf("duplicate object id %q", o.ID)
		}
		ids[o.ID] = true
	}
	for _, o := range doc.Scene.Objects {
		if o.ParentID != "" && !ids[o.ParentID] {
			return fmt.Errorf("object %q references unknown parent %q", o.ID, o.ParentID)
		}
	}
	if sel := doc.Scene.SelectedObjectID; sel != "" && !ids[sel] {
		return fmt.Errorf("selection references unknown object %q", sel)
	}
	for _, tr := range doc.Clip.Tracks {
		if !ids[tr.ObjectID] {
			return fmt.Errorf("track references unknown object %q", tr.ObjectID)
		}
	}
	takeNames := make(map[string]bool)
	for _, t := range doc.Clip.Takes {
		if t.StartTime < 0 || t.StartTime >= t.EndTime {
			return fmt.Errorf("take %q has invalid range [%v, %v]", t.Name, t.StartTime, t.EndTime)
		}
		if doc.Clip.DurationSec > 0 && t.EndTime > doc.Clip.DurationSec {
			return fmt.Errorf("take %q ends at %v, beyond clip duration %v", t.Name, t.EndTime, doc.Clip.DurationSec)
		}
		norm := strings.ToLower(strings.TrimSpace(t.Name))
		if takeNames[norm] {
			return fmt.Errorf("duplicate take name %q", t.Name)
		}
		takeNames[norm] = true
	}
	return nil
}

func flatten(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flatten(cause)...)
	}
	return flat
}
