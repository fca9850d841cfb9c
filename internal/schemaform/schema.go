// Package schemaform models the connector configuration forms the backend
// describes with JSON-Schema fragments. A fragment is parsed into a closed
// set of field kinds; defaults, empty-value omission, and required-field
// validation are pure functions over the parsed form.
package schemaform

import (
	"github.com/tidwall/gjson"
)

// Kind is the closed set of field types a connector schema can declare.
type Kind int

const (
	KindString Kind = iota
	KindPassword
	KindNumber
	KindInteger
	KindBoolean
	KindEnum
	KindStringArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindPassword:
		return "password"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindEnum:
		return "enum"
	case KindStringArray:
		return "string-array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field is one property of a connector schema.
type Field struct {
	Name        string
	Title       string
	Description string
	Placeholder string
	Kind        Kind
	Required    bool
	Hidden      bool
	Default     interface{} // nil when the schema declares no default
	Enum        []string
	Object      *Schema // set when Kind == KindObject
}

// Schema is an ordered connector configuration form.
type Schema struct {
	Title  string
	Fields []Field
	// Malformed is set when the fragment has no properties object. The
	// renderers show a placeholder instead of failing.
	Malformed bool
}

// UIHints overlays backend rendering hints onto a schema. Currently only
// the hidden widget is honored.
type UIHints map[string]UIHint

type UIHint struct {
	Widget string `json:"ui:widget"`
}

// Label returns the display name for a field.
func (f *Field) Label() string {
	if f.Title != "" {
		return f.Title
	}
	return f.Name
}

// FieldByName returns the named field, or nil.
func (s *Schema) FieldByName(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// Parse decodes a JSON-Schema fragment into a Schema. Property order is
// preserved from the document; an explicit numeric "order" annotation wins
// over document order. A fragment without properties parses as malformed.
func Parse(raw []byte, hints UIHints) *Schema {
	doc := gjson.ParseBytes(raw)
	return parseObject(doc, hints)
}

func parseObject(doc gjson.Result, hints UIHints) *Schema {
	schema := &Schema{Title: doc.Get("title").String()}

	props := doc.Get("properties")
	if !props.Exists() || !props.IsObject() {
		schema.Malformed = true
		return schema
	}

	required := make(map[string]bool)
	doc.Get("required").ForEach(func(_, value gjson.Result) bool {
		required[value.String()] = true
		return true
	})

	type ordered struct {
		field Field
		order int64
		pos   int
	}
	var fields []ordered

	pos := 0
	props.ForEach(func(key, prop gjson.Result) bool {
		field := parseField(key.String(), prop, hints)
		field.Required = required[field.Name]

		order := int64(1<<62 - 1)
		if o := prop.Get("order"); o.Exists() {
			order = o.Int()
		}
		fields = append(fields, ordered{field: field, order: order, pos: pos})
		pos++
		return true
	})

	// Stable sort by explicit order, falling back to document position.
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0; j-- {
			a, b := fields[j-1], fields[j]
			if b.order < a.order || (b.order == a.order && b.pos < a.pos) {
				fields[j-1], fields[j] = b, a
			}
		}
	}

	for _, f := range fields {
		schema.Fields = append(schema.Fields, f.field)
	}
	return schema
}

func parseField(name string, prop gjson.Result, hints UIHints) Field {
	field := Field{
		Name:        name,
		Title:       prop.Get("title").String(),
		Description: prop.Get("description").String(),
		Placeholder: prop.Get("placeholder").String(),
	}

	if hint, ok := hints[name]; ok && hint.Widget == "hidden" {
		field.Hidden = true
	}

	if def := prop.Get("default"); def.Exists() {
		field.Default = def.Value()
	}

	if enum := prop.Get("enum"); enum.Exists() && enum.IsArray() {
		enum.ForEach(func(_, v gjson.Result) bool {
			field.Enum = append(field.Enum, v.String())
			return true
		})
		field.Kind = KindEnum
		return field
	}

	switch prop.Get("type").String() {
	case "number":
		field.Kind = KindNumber
	case "integer":
		field.Kind = KindInteger
	case "boolean":
		field.Kind = KindBoolean
	case "array":
		field.Kind = KindStringArray
	case "object":
		field.Kind = KindObject
		field.Object = parseObject(prop, subHints(hints, name))
	default:
		if prop.Get("format").String() == "password" {
			field.Kind = KindPassword
		} else {
			field.Kind = KindString
		}
	}
	return field
}

// subHints extracts nested hints of the form "parent.child".
func subHints(hints UIHints, parent string) UIHints {
	nested := UIHints{}
	prefix := parent + "."
	for key, hint := range hints {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			nested[key[len(prefix):]] = hint
		}
	}
	return nested
}
