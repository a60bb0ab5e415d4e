package proof

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/motionforge/motionforge/pkg/runtime"
)

// WriteBundle writes each named file into outDir and packs the same
// contents into outDir/bundle.zip. Files are zipped in sorted name order
// with zeroed timestamps so the archive bytes are reproducible.
func WriteBundle(outDir string, files map[string][]byte) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := os.WriteFile(filepath.Join(outDir, name), files[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	zf, err := os.Create(filepath.Join(outDir, "bundle.zip"))
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}
	defer zf.Close()

	zw := zip.NewWriter(zf)
	for _, name := range names {
		// zip.FileHeader without Modified stays at the zip epoch.
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("add %s to bundle: %w", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			return fmt.Errorf("write %s to bundle: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish bundle: %w", err)
	}
	return nil
}

// VerifyBundleDir re-hashes the artifacts in a bundle directory against
// the hashes recorded in its proof.json.
func VerifyBundleDir(dir string) error {
	proofJSON, err := os.ReadFile(filepath.Join(dir, "proof.json"))
	if err != nil {
		return fmt.Errorf("read proof: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(proofJSON, &doc); err != nil {
		return fmt.Errorf("parse proof: %w", err)
	}

	if doc.OutputHash != "" {
		projectJSON, err := os.ReadFile(filepath.Join(dir, "project.json"))
		if err != nil {
			return fmt.Errorf("read project: %w", err)
		}
		if got := HashBytes(projectJSON); got != doc.OutputHash {
			return fmt.Errorf("project.json hash mismatch: proof records %s, file hashes to %s",
				doc.OutputHash, got)
		}
	}
	if doc.ChainHash != "" {
		res, err := runtime.VerifyTraceFile(filepath.Join(dir, "events.jsonl"))
		if err != nil {
			return fmt.Errorf("read event trace: %w", err)
		}
		if !res.Valid {
			return fmt.Errorf("event trace broken at event %d: %s", res.BrokenAt, res.Error)
		}
		if res.ChainHash != doc.ChainHash {
			return fmt.Errorf("event chain mismatch: proof records %s, trace hashes to %s",
				doc.ChainHash, res.ChainHash)
		}
	}
	return nil
}
