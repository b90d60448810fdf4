package experiment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// IdentifierKind tells which representation an Identifier carries.
type IdentifierKind int

const (
	IdentifierAbsent IdentifierKind = iota
	IdentifierString
	IdentifierNumber
	IdentifierStructured
	IdentifierBoolean
)

// Identifier is the assignment identity used to seed bonus round selection. The
// survey store may hand it over as a string, a number or a structured record;
// structured records keep their canonical serialization so field order survives.
type Identifier struct {
	kind IdentifierKind
	str  string
	num  float64
	raw  []byte
	b    bool
}

// StringIdentifier wraps a string identifier.
func StringIdentifier(s string) Identifier {
	return Identifier{kind: IdentifierString, str: s}
}

// NumberIdentifier wraps a numeric identifier.
func NumberIdentifier(n float64) Identifier {
	return Identifier{kind: IdentifierNumber, num: n}
}

// StructuredIdentifier serializes v and keeps the compact JSON form.
func StructuredIdentifier(v any) (Identifier, error) {
	raw, err := canonicalJSON(v)
	if err != nil {
		return Identifier{}, fmt.Errorf("failed to serialize identifier: %w", err)
	}
	if bytes.Equal(raw, []byte("null")) {
		return Identifier{}, nil
	}
	return Identifier{kind: IdentifierStructured, raw: raw}, nil
}

// Kind returns the identifier representation.
func (id Identifier) Kind() IdentifierKind { return id.kind }

// IsAbsent reports whether no identifier was recorded.
func (id Identifier) IsAbsent() bool { return id.kind == IdentifierAbsent }

// SeedValue returns the value handed to the seeded generator: a string, a
// float64, a json.RawMessage for structured records, a bool, or nil.
func (id Identifier) SeedValue() any {
	switch id.kind {
	case IdentifierString:
		return id.str
	case IdentifierNumber:
		return id.num
	case IdentifierStructured:
		return json.RawMessage(id.raw)
	case IdentifierBoolean:
		return id.b
	default:
		return nil
	}
}

// String returns the textual form used when the identifier is concatenated
// with a round number.
func (id Identifier) String() string {
	switch id.kind {
	case IdentifierString:
		return id.str
	case IdentifierNumber:
		return FormatNumber(id.num)
	case IdentifierStructured:
		return string(id.raw)
	case IdentifierBoolean:
		return strconv.FormatBool(id.b)
	default:
		return ""
	}
}

// MarshalJSON writes the identifier back in its original representation.
func (id Identifier) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case IdentifierString:
		return json.Marshal(id.str)
	case IdentifierNumber:
		return []byte(FormatNumber(id.num)), nil
	case IdentifierStructured:
		return id.raw, nil
	case IdentifierBoolean:
		return []byte(strconv.FormatBool(id.b)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, a number, an object/array or null.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = Identifier{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = StringIdentifier(s)
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return err
		}
		*id = Identifier{kind: IdentifierStructured, raw: buf.Bytes()}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*id = Identifier{kind: IdentifierBoolean, b: b}
	default:
		n, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			return fmt.Errorf("invalid identifier %s: %w", trimmed, err)
		}
		*id = NumberIdentifier(n)
	}
	return nil
}

// FormatNumber renders a float the way the survey front end prints numbers:
// integers without a fraction, exponent form only for very large or small values.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	abs := math.Abs(n)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func canonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
