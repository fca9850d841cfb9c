package schemaform

import (
	"testing"
)

func TestParsePreservesDocumentOrder(t *testing.T) {
	schema := Parse([]byte(`{
		"type": "object",
		"properties": {
			"first": {"type": "string"},
			"second": {"type": "string"},
			"third": {"type": "string"}
		}
	}`), nil)

	var names []string
	for _, field := range schema.Fields {
		names = append(names, field.Name)
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
}

func TestParseExplicitOrderWins(t *testing.T) {
	schema := Parse([]byte(`{
		"type": "object",
		"properties": {
			"last": {"type": "string", "order": 3},
			"middle": {"type": "string", "order": 2},
			"head": {"type": "string", "order": 1}
		}
	}`), nil)

	if schema.Fields[0].Name != "head" || schema.Fields[2].Name != "last" {
		t.Fatalf("expected explicit order to win, got %s..%s",
			schema.Fields[0].Name, schema.Fields[2].Name)
	}
}

func TestParseFieldKinds(t *testing.T) {
	schema := Parse([]byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"secret": {"type": "string", "format": "password"},
			"count": {"type": "integer"},
			"rate": {"type": "number"},
			"enabled": {"type": "boolean"},
			"mode": {"type": "string", "enum": ["a", "b"]},
			"hosts": {"type": "array"},
			"tls": {"type": "object", "properties": {"ca": {"type": "string"}}}
		}
	}`), nil)

	kinds := map[string]Kind{}
	for _, field := range schema.Fields {
		kinds[field.Name] = field.Kind
	}

	want := map[string]Kind{
		"name": KindString, "secret": KindPassword, "count": KindInteger,
		"rate": KindNumber, "enabled": KindBoolean, "mode": KindEnum,
		"hosts": KindStringArray, "tls": KindObject,
	}
	for name, kind := range want {
		if kinds[name] != kind {
			t.Fatalf("field %s: expected kind %v, got %v", name, kind, kinds[name])
		}
	}

	tls := schema.FieldByName("tls")
	if tls.Object == nil || tls.Object.FieldByName("ca") == nil {
		t.Fatalf("expected nested object schema to be parsed")
	}
}

func TestParseHiddenHints(t *testing.T) {
	schema := Parse([]byte(`{
		"type": "object",
		"properties": {
			"visible": {"type": "string"},
			"internal": {"type": "string"},
			"tls": {"type": "object", "properties": {"debug": {"type": "string"}}}
		}
	}`), UIHints{
		"internal":  {Widget: "hidden"},
		"tls.debug": {Widget: "hidden"},
	})

	if schema.FieldByName("visible").Hidden {
		t.Fatalf("expected visible field to stay visible")
	}
	if !schema.FieldByName("internal").Hidden {
		t.Fatalf("expected hinted field to be hidden")
	}
	if !schema.FieldByName("tls").Object.FieldByName("debug").Hidden {
		t.Fatalf("expected nested hint to apply")
	}
}

func TestParseRequiredList(t *testing.T) {
	schema := Parse([]byte(`{
		"type": "object",
		"required": ["host"],
		"properties": {
			"host": {"type": "string"},
			"note": {"type": "string"}
		}
	}`), nil)

	if !schema.FieldByName("host").Required {
		t.Fatalf("expected host to be required")
	}
	if schema.FieldByName("note").Required {
		t.Fatalf("expected note to be optional")
	}
}

func TestFieldLabelFallsBackToName(t *testing.T) {
	field := Field{Name: "host"}
	if field.Label() != "host" {
		t.Fatalf("expected name fallback, got %s", field.Label())
	}
	field.Title = "Host"
	if field.Label() != "Host" {
		t.Fatalf("expected title, got %s", field.Label())
	}
}
