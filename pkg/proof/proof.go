package proof

import (
	"fmt"

	"github.com/motionforge/motionforge/pkg/plan"
	"github.com/motionforge/motionforge/pkg/preview"
)

// Generator identifies the tooling that produced a proof.
type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Document is the canonical record of one pipeline run. Built once,
// never mutated afterward; it deliberately carries no wall-clock
// timestamp so identical logical inputs produce byte-identical proofs.
type Document struct {
	Generator   Generator     `json:"generator"`
	Goal        string        `json:"goal,omitempty"`
	Script      string        `json:"script,omitempty"`
	PlanID      string        `json:"planId"`
	Takes       []plan.Take   `json:"takes,omitempty"`
	InputHash   string        `json:"inputHash,omitempty"`
	PlanHash    string        `json:"planHash"`
	OutputHash  string        `json:"outputHash,omitempty"`
	ChainHash   string        `json:"chainHash,omitempty"`
	DiffSummary *preview.Diff `json:"diffSummary,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	Errors      []string      `json:"errors,omitempty"`
	PreviewOnly bool          `json:"previewOnly"`
}

// Build assembles a proof document. The plan hash is computed here so
// every proof ties to the exact plan bytes it describes.
type Build struct {
	Generator   Generator
	Goal        string
	Script      string
	Plan        *plan.Plan
	Takes       []plan.Take
	InputJSON   []byte // pre-run project export, empty when starting fresh
	OutputJSON  []byte // post-run project export, empty for preview-only
	ChainHash   string
	Diff        *preview.Diff
	Warnings    []string
	Errors      []string
	PreviewOnly bool
}

// BuildDocument constructs the immutable proof record.
func BuildDocument(b Build) (*Document, error) {
	planHash, err := HashJSON(b.Plan)
	if err != nil {
		return nil, fmt.Errorf("hash plan: %w", err)
	}

	doc := &Document{
		Generator:   b.Generator,
		Goal:        b.Goal,
		Script:      b.Script,
		PlanID:      b.Plan.ID,
		Takes:       b.Takes,
		PlanHash:    planHash,
		ChainHash:   b.ChainHash,
		DiffSummary: b.Diff,
		Warnings:    b.Warnings,
		Errors:      b.Errors,
		PreviewOnly: b.PreviewOnly,
	}
	if len(b.InputJSON) > 0 {
		doc.InputHash = HashBytes(b.InputJSON)
	}
	if len(b.OutputJSON) > 0 {
		doc.OutputHash = HashBytes(b.OutputJSON)
	}
	return doc, nil
}

// MarshalCanonical serializes the proof with sorted keys, the form that
// is written to disk and hashed by verifiers.
func (d *Document) MarshalCanonical() ([]byte, error) {
	return CanonicalJSON(d)
}
