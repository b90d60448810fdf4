package rng

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"unicode/utf16"
)

// seeder is implemented by values that know which part of themselves seeds
// a stream, such as assignment identifiers.
type seeder interface {
	SeedValue() any
}

// HashSeed normalizes a seed of arbitrary type into the generator's initial
// state:
//   - strings sum the UTF-16 code unit that starts each character
//   - numbers are used as they are (non-finite numbers become 0)
//   - structured values sum the characters of their compact JSON form
//   - nil, booleans and anything else become 0
func HashSeed(seed any) float64 {
	switch v := seed.(type) {
	case nil:
		return 0
	case seeder:
		return HashSeed(v.SeedValue())
	case string:
		return sumCharCodes(v)
	case json.RawMessage:
		if len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return 0
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return sumCharCodes(string(v))
		}
		return sumCharCodes(buf.String())
	case bool:
		return 0
	}

	rv := reflect.ValueOf(seed)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array, reflect.Pointer:
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return 0
		}
		raw, err := serialize(seed)
		if err != nil {
			return 0
		}
		return sumCharCodes(string(raw))
	default:
		return 0
	}
}

func sumCharCodes(s string) float64 {
	var sum float64
	for _, r := range s {
		if r >= 0x10000 {
			hi, _ := utf16.EncodeRune(r)
			sum += float64(hi)
			continue
		}
		sum += float64(r)
	}
	return sum
}

func serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
