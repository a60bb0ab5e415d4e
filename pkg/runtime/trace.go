package runtime

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// genesisHash seeds the event chain.
var genesisHash = strings.Repeat("0", 64)

// TraceEvent is one line of the JSONL event trace. Each line carries the
// SHA-256 of the previous line, forming a tamper-evident chain.
type TraceEvent struct {
	PrevHash string         `json:"prev_hash"`
	Seq      int64          `json:"seq"`
	Type     string         `json:"type"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// TraceWriter appends runtime events to a JSONL stream with a hash chain.
type TraceWriter struct {
	w        io.Writer
	prevHash string
}

// NewTraceWriter creates a trace writer over the given stream.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w, prevHash: genesisHash}
}

// NewFileTraceWriter creates a trace writer appending to a JSONL file.
func NewFileTraceWriter(path string) (*TraceWriter, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace file: %w", err)
	}
	return NewTraceWriter(f), f, nil
}

// Write appends one event line and advances the chain.
func (tw *TraceWriter) Write(evt Event) error {
	line, err := json.Marshal(TraceEvent{
		PrevHash: tw.prevHash,
		Seq:      evt.Seq,
		Type:     evt.Type,
		Payload:  evt.Payload,
	})
	if err != nil {
		return fmt.Errorf("encode trace event: %w", err)
	}
	if _, err := tw.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write trace event: %w", err)
	}
	sum := sha256.Sum256(line)
	tw.prevHash = hex.EncodeToString(sum[:])
	return nil
}

// ChainHash returns the hash of the last written event (the chain head).
func (tw *TraceWriter) ChainHash() string { return tw.prevHash }

// VerifyResult is the outcome of verifying a trace stream.
type VerifyResult struct {
	EventCount int
	Valid      bool
	BrokenAt   int // -1 if no break
	ChainHash  string
	Error      string
}

// VerifyTraceFile verifies the hash chain of a trace file.
func VerifyTraceFile(path string) (*VerifyResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()
	return VerifyTrace(f)
}

// VerifyTrace checks chain integrity and monotonic sequence numbers.
func VerifyTrace(r io.Reader) (*VerifyResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	expectedPrev := genesisHash
	count := 0
	lastSeq := int64(0)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		count++

		var evt TraceEvent
		if err := json.Unmarshal(line, &evt); err != nil {
			return &VerifyResult{
				EventCount: count, BrokenAt: count,
				Error: fmt.Sprintf("event %d: invalid JSON: %v", count, err),
			}, nil
		}
		if evt.PrevHash != expectedPrev {
			return &VerifyResult{
				EventCount: count, BrokenAt: count,
				Error: fmt.Sprintf("event %d: prev_hash mismatch", count),
			}, nil
		}
		if evt.Seq <= lastSeq {
			return &VerifyResult{
				EventCount: count, BrokenAt: count,
				Error: fmt.Sprintf("event %d: sequence %d not after %d", count, evt.Seq, lastSeq),
			}, nil
		}
		lastSeq = evt.Seq

		sum := sha256.Sum256(line)
		expectedPrev = hex.EncodeToString(sum[:])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	return &VerifyResult{
		EventCount: count,
		Valid:      true,
		BrokenAt:   -1,
		ChainHash:  expectedPrev,
	}, nil
}
