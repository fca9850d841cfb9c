package schemaform

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// Prompter fills a form by walking the schema and asking for each field on
// the terminal. Values provided as --field=value arguments skip the prompt;
// defaulted fields offer their default as the empty-input answer.
type Prompter struct {
	reader *bufio.Reader
	args   map[string]string
}

// NewPrompter builds a prompter over the given input reader and raw
// command arguments of the form --name=value (last occurrence wins).
func NewPrompter(reader *bufio.Reader, args []string) *Prompter {
	parsed := make(map[string]string)
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if ok {
			parsed[key] = strings.TrimSpace(value)
		}
	}
	return &Prompter{reader: reader, args: parsed}
}

// Arg returns the value of a --name=value argument, or "" when absent.
func (p *Prompter) Arg(name string) string {
	return p.args[name]
}

// Fill prompts for every visible field and returns the completed form
// data, with defaults injected and the omission rules applied.
func (p *Prompter) Fill(schema *Schema, initial FormData) (FormData, error) {
	if schema.Malformed {
		fmt.Println("No schema properties provided")
		return initial, nil
	}

	data := schema.ApplyDefaults(initial)
	for i := range schema.Fields {
		field := &schema.Fields[i]
		if field.Hidden {
			continue
		}
		value, err := p.promptField(field, data[field.Name], "")
		if err != nil {
			return nil, err
		}
		data = schema.Apply(data, field.Name, value)
	}
	return data, nil
}

func (p *Prompter) promptField(field *Field, current interface{}, prefix string) (interface{}, error) {
	argKey := field.Name
	if prefix != "" {
		argKey = prefix + "." + field.Name
	}

	if field.Kind == KindObject && field.Object != nil {
		fmt.Printf("%s:\n", field.Label())
		nested, _ := current.(map[string]interface{})
		out := FormData{}
		for key, value := range nested {
			out[key] = value
		}
		for i := range field.Object.Fields {
			child := &field.Object.Fields[i]
			if child.Hidden {
				continue
			}
			value, err := p.promptField(child, out[child.Name], argKey)
			if err != nil {
				return nil, err
			}
			out = field.Object.Apply(out, child.Name, value)
		}
		return out, nil
	}

	raw, provided := p.args[argKey]
	if !provided {
		raw = p.ask(field, current)
	}
	return coerce(field, raw, current)
}

func (p *Prompter) ask(field *Field, current interface{}) string {
	question := field.Label()
	switch {
	case len(field.Enum) > 0:
		question += " (" + strings.Join(field.Enum, ", ") + ")"
	case field.Kind == KindBoolean:
		question += " (true/false)"
	case field.Kind == KindStringArray:
		question += " (comma separated)"
	}
	if current != nil && field.Kind != KindPassword {
		question += fmt.Sprintf(" [%v]", displayValue(current))
	}
	if !field.Required {
		question += " (optional)"
	}
	fmt.Print(question + ": ")

	if field.Kind == KindPassword {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return ""
		}
		return string(raw)
	}

	line, _ := p.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// coerce converts raw prompt input to the field's value type. Empty input
// keeps the current (possibly defaulted) value.
func coerce(field *Field, raw string, current interface{}) (interface{}, error) {
	if raw == "" {
		return current, nil
	}

	switch field.Kind {
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number for %s: %q", field.Label(), raw)
		}
		return n, nil
	case KindInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer for %s: %q", field.Label(), raw)
		}
		return float64(n), nil
	case KindBoolean:
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s. Must be one of: true, false", field.Label())
		}
		return b, nil
	case KindEnum:
		for _, option := range field.Enum {
			if strings.EqualFold(option, raw) {
				return option, nil
			}
		}
		return nil, fmt.Errorf("invalid value for %s. Must be one of: %s",
			field.Label(), strings.Join(field.Enum, ", "))
	case KindStringArray:
		parts := strings.Split(raw, ",")
		items := make([]interface{}, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return items, nil
	default:
		return raw, nil
	}
}

func displayValue(value interface{}) string {
	switch v := value.(type) {
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ",")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
