package schemaform

// FormData is the key-value object a form produces and consumes. Renderers
// always emit a full object, never deltas.
type FormData = map[string]interface{}

// IsEmpty reports whether a field value counts as empty for the omission
// and validation rules: nil, empty string, or empty array.
func IsEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	default:
		return false
	}
}

// ApplyDefaults returns a copy of data with every schema default injected
// for keys that have no value yet. Nested object defaults are injected
// recursively. This runs once when a form is opened, so defaulted fields
// are present in the emitted object before any user edit.
func (s *Schema) ApplyDefaults(data FormData) FormData {
	out := FormData{}
	for key, value := range data {
		out[key] = value
	}
	if s.Malformed {
		return out
	}

	for i := range s.Fields {
		field := &s.Fields[i]
		if field.Kind == KindObject && field.Object != nil {
			nested, _ := out[field.Name].(map[string]interface{})
			withDefaults := field.Object.ApplyDefaults(nested)
			if len(withDefaults) > 0 {
				out[field.Name] = withDefaults
			}
			continue
		}
		if field.Default == nil {
			continue
		}
		if _, present := out[field.Name]; !present {
			out[field.Name] = field.Default
		}
	}
	return out
}

// Apply sets one field and returns the full updated object. Empty values
// on optional fields are removed from the object rather than stored as
// empty strings; an optional nested object whose children are all empty is
// dropped entirely.
func (s *Schema) Apply(data FormData, name string, value interface{}) FormData {
	out := FormData{}
	for key, existing := range data {
		out[key] = existing
	}

	field := s.FieldByName(name)
	if field != nil && field.Kind == KindObject && field.Object != nil {
		nested, _ := value.(map[string]interface{})
		pruned := field.Object.prune(nested)
		if len(pruned) == 0 && !field.Required {
			delete(out, name)
		} else {
			out[name] = pruned
		}
		return out
	}

	required := field != nil && field.Required
	if IsEmpty(value) && !required {
		delete(out, name)
		return out
	}
	out[name] = value
	return out
}

// prune drops empty optional children from a nested object, recursively.
func (s *Schema) prune(data FormData) FormData {
	out := FormData{}
	for key, value := range data {
		field := s.FieldByName(key)
		if field != nil && field.Kind == KindObject && field.Object != nil {
			if nested, ok := value.(map[string]interface{}); ok {
				pruned := field.Object.prune(nested)
				if len(pruned) > 0 || (field != nil && field.Required) {
					out[key] = pruned
				}
				continue
			}
		}
		required := field != nil && field.Required
		if !IsEmpty(value) || required {
			out[key] = value
		}
	}
	return out
}

// Errors maps field names to error strings. Nested object errors are
// nested Errors values.
type Errors map[string]interface{}

// Flat returns the error map with nested errors flattened to dotted paths.
func (e Errors) Flat() map[string]string {
	out := map[string]string{}
	flattenErrors("", e, out)
	return out
}

func flattenErrors(prefix string, errs Errors, out map[string]string) {
	for key, value := range errs {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[path] = v
		case Errors:
			flattenErrors(path, v, out)
		}
	}
}

// Validate checks required fields. A required field errors when it is
// empty AND it was either intentionally cleared (the key is present with a
// defaulted field) or it has no default at all. A defaulted field that was
// never touched is never flagged: after ApplyDefaults it holds its default
// and is not empty. Validation never panics and a malformed schema
// produces no errors.
func (s *Schema) Validate(data FormData) Errors {
	errs := Errors{}
	if s.Malformed {
		return errs
	}

	for i := range s.Fields {
		field := &s.Fields[i]
		value, present := data[field.Name]

		hasDefault := field.Default != nil
		empty := IsEmpty(value)
		intentionallyCleared := hasDefault && empty && present

		if field.Required && empty && (intentionallyCleared || !hasDefault) {
			errs[field.Name] = field.Label() + " is required"
		}

		if field.Kind == KindObject && field.Object != nil {
			if nested, ok := value.(map[string]interface{}); ok {
				if nestedErrs := field.Object.Validate(nested); len(nestedErrs) > 0 {
					errs[field.Name] = nestedErrs
				}
			}
		}
	}
	return errs
}
