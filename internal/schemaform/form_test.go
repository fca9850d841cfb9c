package schemaform

import (
	"testing"
)

const postgresSchema = `{
  "title": "PostgreSQL",
  "type": "object",
  "required": ["host", "port", "database"],
  "properties": {
    "host": {"type": "string", "title": "Host"},
    "port": {"type": "integer", "title": "Port", "default": 5432},
    "database": {"type": "string", "title": "Database"},
    "description": {"type": "string", "title": "Description"},
    "ssl": {
      "type": "object",
      "title": "SSL",
      "properties": {
        "mode": {"type": "string", "enum": ["disable", "require"], "default": "disable"},
        "ca_cert": {"type": "string", "title": "CA Certificate"}
      }
    }
  }
}`

func TestApplyDefaultsInjectsOnOpen(t *testing.T) {
	schema := Parse([]byte(postgresSchema), nil)

	data := schema.ApplyDefaults(FormData{})

	if got := data["port"]; got != float64(5432) {
		t.Fatalf("expected port default 5432, got %v", got)
	}
	ssl, ok := data["ssl"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected nested ssl defaults, got %v", data["ssl"])
	}
	if got := ssl["mode"]; got != "disable" {
		t.Fatalf("expected ssl.mode default 'disable', got %v", got)
	}
}

func TestApplyDefaultsKeepsExistingValues(t *testing.T) {
	schema := Parse([]byte(postgresSchema), nil)

	data := schema.ApplyDefaults(FormData{"port": float64(5433)})

	if got := data["port"]; got != float64(5433) {
		t.Fatalf("expected existing port to survive, got %v", got)
	}
}

func TestApplyOmitsEmptyOptionalField(t *testing.T) {
	schema := Parse([]byte(postgresSchema), nil)
	data := FormData{"host": "db.example.com", "description": "old"}

	data = schema.Apply(data, "description", "")

	if _, present := data["description"]; present {
		t.Fatalf("expected empty optional field to be removed, got %v", data["description"])
	}
	if data["host"] != "db.example.com" {
		t.Fatalf("expected untouched fields to survive")
	}
}

func TestApplyKeepsEmptyRequiredField(t *testing.T) {
	schema := Parse([]byte(postgresSchema), nil)
	data := FormData{"host": "db.example.com"}

	data = schema.Apply(data, "host", "")

	if _, present := data["host"]; !present {
		t.Fatalf("expected empty required field to stay in the object")
	}
}

func TestApplyDropsEmptyOptionalObject(t *testing.T) {
	schema := Parse([]byte(postgresSchema), nil)
	data := FormData{"host": "db.example.com"}

	data = schema.Apply(data, "ssl", map[string]interface{}{"mode": "", "ca_cert": ""})

	if _, present := data["ssl"]; present {
		t.Fatalf("expected all-empty optional object to be dropped, got %v", data["ssl"])
	}
}

func TestApplyPrunesEmptyNestedChildren(t *testing.T) {
	schema := Parse([]byte(postgresSchema), nil)

	data := schema.Apply(FormData{}, "ssl", map[string]interface{}{"mode": "require", "ca_cert": ""})

	ssl, ok := data["ssl"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected ssl object, got %v", data["ssl"])
	}
	if _, present := ssl["ca_cert"]; present {
		t.Fatalf("expected empty nested child to be pruned")
	}
	if ssl["mode"] != "require" {
		t.Fatalf("expected non-empty nested child to survive, got %v", ssl["mode"])
	}
}

func TestValidateRequiredWithoutDefault(t *testing.T) {
	schema := Parse([]byte(postgresSchema), nil)

	errs := schema.Validate(FormData{"port": float64(5432)})

	flat := errs.Flat()
	if _, ok := flat["host"]; !ok {
		t.Fatalf("expected error for missing required field without default, got %v", flat)
	}
	if _, ok := flat["database"]; !ok {
		t.Fatalf("expected error for missing database, got %v", flat)
	}
}

func TestValidateUntouchedDefaultedFieldPasses(t *testing.T) {
	schema := Parse([]byte(postgresSchema), nil)

	// Defaulted and absent: the field was never touched, so no error even
	// though it is required.
	errs := schema.Validate(FormData{"host": "db", "database": "app"})

	if _, ok := errs.Flat()["port"]; ok {
		t.Fatalf("expected no error for untouched defaulted field, got %v", errs.Flat())
	}
}

func TestValidateIntentionallyClearedDefaultFails(t *testing.T) {
	schema := Parse([]byte(postgresSchema), nil)

	// Defaulted, empty, and present: the user cleared the value.
	errs := schema.Validate(FormData{"host": "db", "database": "app", "port": nil})

	if _, ok := errs.Flat()["port"]; !ok {
		t.Fatalf("expected error for intentionally cleared default, got %v", errs.Flat())
	}
}

func TestValidateMalformedSchemaProducesNoErrors(t *testing.T) {
	schema := Parse([]byte(`{"title": "broken"}`), nil)

	if !schema.Malformed {
		t.Fatalf("expected schema without properties to parse as malformed")
	}
	if errs := schema.Validate(FormData{}); len(errs) > 0 {
		t.Fatalf("expected no errors from malformed schema, got %v", errs)
	}
}

func TestErrorsFlatNestedPaths(t *testing.T) {
	errs := Errors{
		"host": "Host is required",
		"ssl":  Errors{"mode": "SSL Mode is required"},
	}

	flat := errs.Flat()
	if flat["host"] != "Host is required" {
		t.Fatalf("unexpected flat error: %v", flat)
	}
	if flat["ssl.mode"] != "SSL Mode is required" {
		t.Fatalf("expected dotted nested path, got %v", flat)
	}
}

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		value interface{}
		want  bool
	}{
		{nil, true},
		{"", true},
		{"x", false},
		{[]interface{}{}, true},
		{[]interface{}{"a"}, false},
		{float64(0), false},
		{false, false},
	}
	for _, tc := range cases {
		if got := IsEmpty(tc.value); got != tc.want {
			t.Fatalf("IsEmpty(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}
