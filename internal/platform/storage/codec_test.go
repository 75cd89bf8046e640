package storage

import (
	"strings"
	"testing"
)

type codecRecord struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

func TestCodecRoundTrip(t *testing.T) {
	in := []codecRecord{{ID: 1, Quantity: 3}, {ID: 7, Quantity: 1}}

	raw, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if !strings.Contains(string(raw), `"version":1`) {
		t.Fatalf("encoded blob missing version field: %s", raw)
	}

	var out []codecRecord
	if err := Decode(raw, &out); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestCodecAcceptsLegacyBareArray(t *testing.T) {
	var out []codecRecord
	if err := Decode([]byte(`[{"id":4,"quantity":9}]`), &out); err != nil {
		t.Fatalf("Decode legacy blob error: %v", err)
	}
	if len(out) != 1 || out[0].ID != 4 || out[0].Quantity != 9 {
		t.Fatalf("unexpected legacy payload: %+v", out)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	cases := map[string][]byte{
		"empty":           []byte(""),
		"broken json":     []byte(`{"version":`),
		"future version":  []byte(`{"version":99,"data":[]}`),
		"missing payload": []byte(`{"version":1}`),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var out []codecRecord
			if err := Decode(raw, &out); err == nil {
				t.Fatalf("expected decode error for %s", name)
			}
		})
	}
}

func TestCodecEncodesScalarValues(t *testing.T) {
	raw, err := Encode("bearer-token-value")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	var out string
	if err := Decode(raw, &out); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out != "bearer-token-value" {
		t.Fatalf("unexpected value: %q", out)
	}
}
