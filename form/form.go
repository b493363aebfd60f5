// Package form maps declared record fields to input affordances and coerces
// raw values into tagged field values. The server runs the same coercion on
// every entity payload, so a value accepted here is a value the store keeps.
package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/totegamma/admindata"
)

const dateLayout = "2006-01-02"

// Input describes how a field is edited.
type Input struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HTMLType    string `json:"type"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder,omitempty"`
}

func InputFor(f admindata.Field) Input {
	in := Input{
		ID:       "field-" + f.Name,
		Name:     f.Name,
		Required: f.Required,
	}
	switch f.Kind {
	case admindata.FieldBoolean:
		in.HTMLType = "checkbox"
		// a checkbox always carries a value
		in.Required = false
	case admindata.FieldNumber:
		in.HTMLType = "number"
	case admindata.FieldDate:
		in.HTMLType = "date"
	default:
		in.HTMLType = "text"
		in.Placeholder = f.Description
	}
	return in
}

// Inputs returns one Input per declared field, in declaration order.
func Inputs(t admindata.RecordType) []Input {
	inputs := make([]Input, 0, len(t.Fields))
	for _, f := range t.Fields {
		inputs = append(inputs, InputFor(f))
	}
	return inputs
}

// Parse converts the raw string of an input change into a field value.
// An empty string clears every kind except text and boolean.
func Parse(f admindata.Field, raw string) (admindata.Value, error) {
	return Coerce(f, admindata.TextValue(raw))
}

// Coerce converts v to the kind declared by f.
func Coerce(f admindata.Field, v admindata.Value) (admindata.Value, error) {
	if v.IsNull() {
		return v, nil
	}
	switch kindOf(f) {
	case admindata.FieldText:
		return admindata.TextValue(v.String()), nil

	case admindata.FieldNumber:
		switch v.Kind {
		case admindata.FieldNumber:
			if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
				return admindata.Value{}, fmt.Errorf("%v is not a finite number", v.Number)
			}
			return v, nil
		case admindata.FieldText:
			s := strings.TrimSpace(v.Text)
			if s == "" {
				return admindata.Value{}, nil
			}
			n, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				return admindata.Value{}, fmt.Errorf("%q is not a number", v.Text)
			}
			return admindata.NumberValue(n), nil
		}
		return admindata.Value{}, fmt.Errorf("expected a number, got %s", v.Kind)

	case admindata.FieldBoolean:
		switch v.Kind {
		case admindata.FieldBoolean:
			return v, nil
		case admindata.FieldText:
			switch strings.ToLower(strings.TrimSpace(v.Text)) {
			case "true", "on", "yes", "1":
				return admindata.BoolValue(true), nil
			case "false", "off", "no", "0", "":
				return admindata.BoolValue(false), nil
			}
			return admindata.Value{}, fmt.Errorf("%q is not a boolean", v.Text)
		}
		return admindata.Value{}, fmt.Errorf("expected a boolean, got %s", v.Kind)

	case admindata.FieldDate:
		var s string
		switch v.Kind {
		case admindata.FieldDate:
			s = v.Date
		case admindata.FieldText:
			s = strings.TrimSpace(v.Text)
		default:
			return admindata.Value{}, fmt.Errorf("expected a date, got %s", v.Kind)
		}
		if s == "" {
			return admindata.Value{}, nil
		}
		date, err := normalizeDate(s)
		if err != nil {
			return admindata.Value{}, err
		}
		return admindata.DateValue(date), nil
	}
	return admindata.Value{}, fmt.Errorf("unknown field kind %q", f.Kind)
}

func kindOf(f admindata.Field) admindata.FieldKind {
	if f.Kind == "" {
		return admindata.FieldText
	}
	return f.Kind
}

// normalizeDate keeps calendar dates as YYYY-MM-DD and renders instants as
// UTC RFC 3339.
func normalizeDate(s string) (string, error) {
	if d, err := time.Parse(dateLayout, s); err == nil {
		return d.Format(dateLayout), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC().Format(time.RFC3339), nil
	}
	return "", fmt.Errorf("%q is not a date", s)
}

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Errors collects every problem of one payload.
type Errors []FieldError

func (es Errors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// Validate checks values against the fields of t and returns them coerced,
// in field declaration order. With partial set, omitted fields are allowed
// (updates); required fields still may not be cleared.
func Validate(t admindata.RecordType, values admindata.Values, partial bool) (admindata.Values, error) {
	var errs Errors
	for _, fv := range values {
		if _, ok := t.Field(fv.Name); !ok {
			errs = append(errs, FieldError{Field: fv.Name, Reason: "unknown field"})
		}
	}

	out := make(admindata.Values, 0, len(values))
	for _, f := range t.Fields {
		v, present := values.Get(f.Name)
		if !present {
			if f.Required && !partial {
				errs = append(errs, FieldError{Field: f.Name, Reason: "is required"})
			}
			continue
		}
		coerced, err := Coerce(f, v)
		if err != nil {
			errs = append(errs, FieldError{Field: f.Name, Reason: err.Error()})
			continue
		}
		if f.Required && isBlank(coerced) {
			errs = append(errs, FieldError{Field: f.Name, Reason: "is required"})
			continue
		}
		out = append(out, admindata.FieldValue{Name: f.Name, Value: coerced})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func isBlank(v admindata.Value) bool {
	return v.IsNull() || (v.Kind == admindata.FieldText && strings.TrimSpace(v.Text) == "")
}
