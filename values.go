package admindata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a tagged field value: exactly one of Text, Number, Bool or Date
// is meaningful, selected by Kind. The zero Value is null.
type Value struct {
	Kind   FieldKind
	Text   string
	Number float64
	Bool   bool
	Date   string
}

func TextValue(s string) Value { return Value{Kind: FieldText, Text: s} }
func NumberValue(n float64) Value { return Value{Kind: FieldNumber, Number: n} }
func BoolValue(b bool) Value { return Value{Kind: FieldBoolean, Bool: b} }
func DateValue(date string) Value { return Value{Kind: FieldDate, Date: date} }
func (v Value) IsNull() bool { return v.Kind == "" }

// Interface returns the plain Go value.
func (v Value) Interface() any {
	switch v.Kind {
	case FieldText:
		return v.Text
	case FieldNumber:
		return v.Number
	case FieldBoolean:
		return v.Bool
	case FieldDate:
		return v.Date
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.Kind {
	case FieldText:
		return v.Text
	case FieldNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case FieldBoolean:
		return strconv.FormatBool(v.Bool)
	case FieldDate:
		return v.Date
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON infers the kind from the JSON type. Dates arrive as strings
// and are re-tagged against the declared field by the form package.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Value{}
	case string:
		*v = TextValue(x)
	case float64:
		*v = NumberValue(x)
	case bool:
		*v = BoolValue(x)
	default:
		return fmt.Errorf("unsupported field value %s", string(b))
	}
	return nil
}

type FieldValue struct {
	Name  string
	Value Value
}

// Values is an ordered mapping of field name to value.
type Values []FieldValue

func (vs Values) Get(name string) (Value, bool) {
	for _, fv := range vs {
		if fv.Name == name {
			return fv.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value of name in place, or appends it.
func (vs Values) Set(name string, v Value) Values {
	for i := range vs {
		if vs[i].Name == name {
			out := append(Values(nil), vs...)
			out[i].Value = v
			return out
		}
	}
	return append(append(Values(nil), vs...), FieldValue{Name: name, Value: v})
}

// Merge overlays other onto vs, keeping the position of existing names.
func (vs Values) Merge(other Values) Values {
	out := append(Values(nil), vs...)
	for _, fv := range other {
		out = out.Set(fv.Name, fv.Value)
	}
	return out
}

// Without drops the given names.
func (vs Values) Without(names ...string) Values {
	out := make(Values, 0, len(vs))
	for _, fv := range vs {
		drop := false
		for _, n := range names {
			if fv.Name == n {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, fv)
		}
	}
	return out
}

func (vs Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fv := range vs {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(fv.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(fv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (vs *Values) UnmarshalJSON(b []byte) error {
	out := Values{}
	err := decodeObject(b, func(key string, raw json.RawMessage) error {
		var v Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out = append(out, FieldValue{Name: key, Value: v})
		return nil
	})
	if err != nil {
		return err
	}
	*vs = out
	return nil
}

// decodeObject walks a JSON object in document order.
func decodeObject(b []byte, fn func(key string, raw json.RawMessage) error) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
