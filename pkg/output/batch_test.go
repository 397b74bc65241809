package output

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/protei/nasdecode/pkg/nas"
)

func TestBatchMarshalJSONPreservesPacketOrder(t *testing.T) {
	b := NewBatch("capture.pcapng")
	b.RecordSuccess(5, &nas.Message{Class: nas.ClassEMM})
	b.RecordError(2, errors.New("nas: encrypted NAS message"))
	b.RecordSuccess(9, &nas.Message{Class: nas.ClassESM})

	data, err := b.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		SourceFile string `json:"source_file"`
		Results    []struct {
			Index  int `json:"index"`
			Result struct {
				Error string `json:"error,omitempty"`
			} `json:"result"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.SourceFile != "capture.pcapng" {
		t.Errorf("expect capture.pcapng, got %s", decoded.SourceFile)
	}
	wantOrder := []int{5, 2, 9}
	if len(decoded.Results) != len(wantOrder) {
		t.Fatalf("expect %d results, got %d", len(wantOrder), len(decoded.Results))
	}
	for i, idx := range wantOrder {
		if decoded.Results[i].Index != idx {
			t.Errorf("result %d: expect index %d, got %d", i, idx, decoded.Results[i].Index)
		}
	}
	if decoded.Results[1].Result.Error != "nas: encrypted NAS message" {
		t.Errorf("expect recorded error text, got %q", decoded.Results[1].Result.Error)
	}
}

func TestBatchWriteFileProducesValidJSON(t *testing.T) {
	b := NewBatch("capture.pcapng")
	b.RecordSuccess(0, &nas.Message{Class: nas.ClassEMM})

	path := filepath.Join(t.TempDir(), "out.json")
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var v map[string]interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("written file is not valid JSON: %v", err)
	}
}
