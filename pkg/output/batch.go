// Package output collects per-packet decode results from one capture file
// into a single ordered batch and renders it as pretty-printed JSON, one
// output file per input capture. This mirrors the per-packet
// index-to-result map a batch NAS decoding driver builds over a capture: a
// packet either decoded cleanly, was classified as an encrypted or
// unsupported-protocol message, or failed to decode, and all three are
// recorded rather than only successes.
package output

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/protei/nasdecode/pkg/nas"
)

// Result is one packet's outcome: exactly one of Message or Error is set.
type Result struct {
	Message *nas.Message `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Batch is the ordered, packet-index-keyed output for one capture file.
type Batch struct {
	SourceFile string           `json:"source_file"`
	Results    map[int]*Result  `json:"results"`
	order      []int
}

// NewBatch constructs an empty batch for sourceFile.
func NewBatch(sourceFile string) *Batch {
	return &Batch{SourceFile: sourceFile, Results: make(map[int]*Result)}
}

// RecordSuccess stores a cleanly decoded message at packet index idx.
func (b *Batch) RecordSuccess(idx int, msg *nas.Message) {
	if _, exists := b.Results[idx]; !exists {
		b.order = append(b.order, idx)
	}
	b.Results[idx] = &Result{Message: msg}
}

// RecordError stores a decode failure at packet index idx. err's message is
// recorded verbatim (as ParseError.Error() already classifies Encrypted,
// UnsupportedNASProtocol and Decode distinctly).
func (b *Batch) RecordError(idx int, err error) {
	if _, exists := b.Results[idx]; !exists {
		b.order = append(b.order, idx)
	}
	b.Results[idx] = &Result{Error: err.Error()}
}

// MarshalJSON renders results in the order their packet indices were first
// recorded rather than Go's randomized map iteration order.
func (b *Batch) MarshalJSON() ([]byte, error) {
	type entry struct {
		Index  int     `json:"index"`
		Result *Result `json:"result"`
	}
	entries := make([]entry, 0, len(b.order))
	for _, idx := range b.order {
		entries = append(entries, entry{Index: idx, Result: b.Results[idx]})
	}

	var buf bytes.Buffer
	buf.WriteString(`{"source_file":`)
	sf, err := json.Marshal(b.SourceFile)
	if err != nil {
		return nil, err
	}
	buf.Write(sf)
	buf.WriteString(`,"results":`)
	res, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	buf.Write(res)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteFile pretty-prints b and writes it to path.
func (b *Batch) WriteFile(path string) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return err
	}
	return os.WriteFile(path, pretty.Bytes(), 0o644)
}
