package experiment

import (
	"encoding/json"
	"testing"
)

func TestIdentifier_UnmarshalKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  IdentifierKind
		str   string
	}{
		{`"64f1c2a9e4b0a1b2c3d4e5f6"`, IdentifierString, "64f1c2a9e4b0a1b2c3d4e5f6"},
		{`12345`, IdentifierNumber, "12345"},
		{`1.5`, IdentifierNumber, "1.5"},
		{`{"$oid": "abc",  "n": 1}`, IdentifierStructured, `{"$oid":"abc","n":1}`},
		{`true`, IdentifierBoolean, "true"},
		{`null`, IdentifierAbsent, ""},
	}

	for _, test := range tests {
		var id Identifier
		if err := json.Unmarshal([]byte(test.input), &id); err != nil {
			t.Fatalf("unmarshal %s: %v", test.input, err)
		}
		if id.Kind() != test.kind {
			t.Errorf("%s: kind = %v, want %v", test.input, id.Kind(), test.kind)
		}
		if id.String() != test.str {
			t.Errorf("%s: String() = %q, want %q", test.input, id.String(), test.str)
		}
	}
}

func TestIdentifier_StructuredKeepsFieldOrder(t *testing.T) {
	var id Identifier
	if err := json.Unmarshal([]byte(`{"z": 1, "a": 2}`), &id); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	raw, ok := id.SeedValue().(json.RawMessage)
	if !ok {
		t.Fatalf("seed value type %T", id.SeedValue())
	}
	if string(raw) != `{"z":1,"a":2}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestIdentifier_RoundTrip(t *testing.T) {
	in := `{"_id":"abc","tasks":[],"predictions":[],"values":[]}`
	var a Assignment
	if err := json.Unmarshal([]byte(in), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.ID() != "abc" {
		t.Errorf("ID() = %s", a.ID())
	}
	out, err := json.Marshal(a.Identifier)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"abc"` {
		t.Errorf("marshal = %s", out)
	}
}

func TestStructuredIdentifier_NoHTMLEscaping(t *testing.T) {
	id, err := StructuredIdentifier(map[string]string{"k": "<a&b>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != `{"k":"<a&b>"}` {
		t.Errorf("String() = %s", id.String())
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		42:     "42",
		-3.25:  "-3.25",
		0:      "0",
		1e21:   "1e+21",
		123456: "123456",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
