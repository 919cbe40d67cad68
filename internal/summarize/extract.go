package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSchema marks extractor output that violates the declared field schema.
// Callers treat it the same as a transform failure.
var ErrSchema = errors.New("schema violation")

type FieldType string

const (
	FieldString      FieldType = "string"
	FieldStringArray FieldType = "string_array"
	FieldObject      FieldType = "object"
)

// FieldSpec declares one named field of the structured output. Description is
// natural language steering the model; Fields is populated for nested objects.
type FieldSpec struct {
	Name        string
	Type        FieldType
	Description string
	Fields      []FieldSpec
}

// Extract turns free text into a schema-conformant object via exactly one
// model call. Array fields for which the model found nothing come back as
// empty slices, never nil or missing; any other shape violation is ErrSchema.
func Extract(ctx context.Context, t Transform, cfg ModelConfig, input string, schema []FieldSpec) (map[string]any, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("%w: empty field schema", ErrSchema)
	}

	raw, err := t.Invoke(ctx, extractionPrompt(input, schema), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: extraction call: %v", ErrTransform, err)
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &obj); err != nil {
		return nil, fmt.Errorf("%w: output is not a JSON object: %v", ErrSchema, err)
	}

	if err := conform(obj, schema, ""); err != nil {
		return nil, err
	}
	return obj, nil
}

// conform validates obj against the schema in place, repairing absent or null
// array fields to empty slices and normalizing array elements to strings.
func conform(obj map[string]any, schema []FieldSpec, path string) error {
	for _, field := range schema {
		name := field.Name
		if path != "" {
			name = path + "." + field.Name
		}
		val, ok := obj[field.Name]

		switch field.Type {
		case FieldString:
			if _, isStr := val.(string); !ok || !isStr {
				return fmt.Errorf("%w: field %q missing or not a string", ErrSchema, name)
			}
		case FieldStringArray:
			if !ok || val == nil {
				obj[field.Name] = []string{}
				continue
			}
			items, isArr := val.([]any)
			if !isArr {
				return fmt.Errorf("%w: field %q is not an array", ErrSchema, name)
			}
			out := make([]string, 0, len(items))
			for _, item := range items {
				s, isStr := item.(string)
				if !isStr {
					return fmt.Errorf("%w: field %q contains a non-string element", ErrSchema, name)
				}
				out = append(out, s)
			}
			obj[field.Name] = out
		case FieldObject:
			nested, isObj := val.(map[string]any)
			if !ok || !isObj {
				return fmt.Errorf("%w: field %q missing or not an object", ErrSchema, name)
			}
			if err := conform(nested, field.Fields, name); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: field %q has unknown type %q", ErrSchema, name, field.Type)
		}
	}
	return nil
}

func extractionPrompt(input string, schema []FieldSpec) string {
	var b strings.Builder
	b.WriteString("Convert the document below into a single JSON object.\n")
	b.WriteString("Respond with JSON only, no prose and no code fences.\n\n")
	b.WriteString("Fields:\n")
	describeFields(&b, schema, 0)
	b.WriteString("\nRules:\n")
	b.WriteString("- Include every field listed above.\n")
	b.WriteString("- If nothing in the document fits an array field, emit an empty array [].\n")
	b.WriteString("- Do not invent fields that are not listed.\n\n")
	b.WriteString("Document:\n")
	b.WriteString(input)
	return b.String()
}

func describeFields(b *strings.Builder, schema []FieldSpec, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range schema {
		kind := "string"
		switch f.Type {
		case FieldStringArray:
			kind = "array of strings"
		case FieldObject:
			kind = "object"
		}
		fmt.Fprintf(b, "%s- %q (%s): %s\n", indent, f.Name, kind, f.Description)
		if f.Type == FieldObject {
			describeFields(b, f.Fields, depth+1)
		}
	}
}

// stripFences removes markdown code fences models wrap around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
