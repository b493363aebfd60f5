package form

import (
	"errors"
	"math"
	"testing"

	"github.com/totegamma/admindata"
)

var brands = admindata.RecordType{
	Name: "Brands",
	Fields: []admindata.Field{
		{Name: "Name", Kind: admindata.FieldText, Required: true, Description: "Brand name"},
		{Name: "Rank", Kind: admindata.FieldNumber},
		{Name: "Featured", Kind: admindata.FieldBoolean},
		{Name: "Since", Kind: admindata.FieldDate},
	},
}

func TestInputFor(t *testing.T) {
	inputs := Inputs(brands)
	if len(inputs) != 4 {
		t.Fatalf("expected 4 inputs got %d", len(inputs))
	}
	want := []string{"text", "number", "checkbox", "date"}
	for i, in := range inputs {
		if in.HTMLType != want[i] {
			t.Fatalf("input %d: expected %s got %s", i, want[i], in.HTMLType)
		}
	}
	if inputs[0].ID != "field-Name" || !inputs[0].Required || inputs[0].Placeholder != "Brand name" {
		t.Fatalf("unexpected text input %+v", inputs[0])
	}
	if inputs[2].Required {
		t.Fatalf("checkbox should never be required")
	}
}

func TestParse(t *testing.T) {
	rank, _ := brands.Field("Rank")
	v, err := Parse(rank, " 42.5 ")
	if err != nil || v.Kind != admindata.FieldNumber || v.Number != 42.5 {
		t.Fatalf("unexpected number parse %+v %v", v, err)
	}
	if _, err := Parse(rank, "forty"); err == nil {
		t.Fatalf("expected error for non-numeric input")
	}
	if v, _ := Parse(rank, ""); !v.IsNull() {
		t.Fatalf("empty number input should clear the value")
	}

	featured, _ := brands.Field("Featured")
	if v, _ := Parse(featured, "on"); !v.Bool {
		t.Fatalf("checkbox 'on' should be true")
	}

	since, _ := brands.Field("Since")
	if v, _ := Parse(since, "2024-02-29"); v.Date != "2024-02-29" {
		t.Fatalf("unexpected date %+v", v)
	}
	if v, _ := Parse(since, "2024-02-29T10:00:00+02:00"); v.Date != "2024-02-29T08:00:00Z" {
		t.Fatalf("instant should be normalized to UTC, got %+v", v)
	}
	if _, err := Parse(since, "yesterday"); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}

func TestCoerceRejectsWrongKinds(t *testing.T) {
	rank, _ := brands.Field("Rank")
	if _, err := Coerce(rank, admindata.BoolValue(true)); err == nil {
		t.Fatalf("boolean should not coerce to number")
	}
	for _, raw := range []string{"NaN", "Inf", "-Infinity"} {
		if _, err := Coerce(rank, admindata.TextValue(raw)); err == nil {
			t.Fatalf("%q should not coerce to number", raw)
		}
	}
	if _, err := Coerce(rank, admindata.NumberValue(math.Inf(1))); err == nil {
		t.Fatalf("infinite number should be rejected")
	}
	name, _ := brands.Field("Name")
	v, err := Coerce(name, admindata.NumberValue(7))
	if err != nil || v.Text != "7" {
		t.Fatalf("number should stringify into text, got %+v %v", v, err)
	}
}

func TestValidateCreate(t *testing.T) {
	values := admindata.Values{
		{Name: "Rank", Value: admindata.TextValue("3")},
		{Name: "Name", Value: admindata.TextValue("Acme")},
	}
	out, err := Validate(brands, values, false)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(out) != 2 || out[0].Name != "Name" || out[1].Value.Kind != admindata.FieldNumber {
		t.Fatalf("expected coerced values in declaration order, got %+v", out)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	values := admindata.Values{
		{Name: "Rank", Value: admindata.TextValue("many")},
		{Name: "Colour", Value: admindata.TextValue("red")},
	}
	_, err := Validate(brands, values, false)
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected form.Errors, got %v", err)
	}
	if len(errs) != 3 {
		t.Fatalf("expected unknown field, bad number and missing name, got %v", errs)
	}
}

func TestValidatePartial(t *testing.T) {
	if _, err := Validate(brands, admindata.Values{{Name: "Rank", Value: admindata.NumberValue(1)}}, true); err != nil {
		t.Fatalf("partial update without required field should pass: %v", err)
	}
	if _, err := Validate(brands, admindata.Values{{Name: "Name", Value: admindata.TextValue("  ")}}, true); err == nil {
		t.Fatalf("clearing a required field should fail")
	}
}
