package serializer

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the wire type of a serializer field.
type Kind int

const (
	KindString Kind = iota
	KindEmail
	KindBool
	KindInteger
	KindNumber
	KindRelation
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindEmail:
		return "email"
	case KindBool:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// Field describes one declared field of a serializer.
type Field struct {
	Name      string
	GoName    string
	Kind      Kind
	Nullable  bool
	Required  bool
	ReadOnly  bool
	MaxLength int
	Label     string

	// FKField names the struct field that stores the related id.
	// Only set for KindRelation.
	FKField string
	// Nested renders a relation field.
	Nested *Serializer

	index   []int
	fkIndex []int
	typ     reflect.Type
}

// tagOptions holds parsed `field:"..."` options.
type tagOptions struct {
	readOnly bool
	required bool
	label    string
	fk       string
}

func parseFieldTag(tag string) tagOptions {
	var opts tagOptions
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, "=")
		switch key {
		case "readonly":
			opts.readOnly = true
		case "required":
			opts.required = true
		case "label":
			opts.label = value
		case "fk":
			opts.fk = value
		}
	}
	return opts
}

// jsonName returns the wire name of a struct field, or "" when it is hidden.
func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

// maxLength extracts the max=N rule from a validate tag.
func maxLength(rules string) int {
	for _, rule := range strings.Split(rules, ",") {
		if v, ok := strings.CutPrefix(rule, "max="); ok {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}

func hasRule(rules, name string) bool {
	for _, rule := range strings.Split(rules, ",") {
		if rule == name {
			return true
		}
	}
	return false
}

// introspect builds the Field for wire name `name` on struct type t.
func introspect(t reflect.Type, name string, nested *Serializer) (Field, error) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || jsonName(sf) != name {
			continue
		}

		opts := parseFieldTag(sf.Tag.Get("field"))
		rules := sf.Tag.Get("validate")

		f := Field{
			Name:      name,
			GoName:    sf.Name,
			Required:  opts.required,
			ReadOnly:  opts.readOnly,
			Label:     opts.label,
			MaxLength: maxLength(rules),
			index:     sf.Index,
			typ:       sf.Type,
		}

		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			f.Nullable = true
			ft = ft.Elem()
		}

		if nested != nil {
			if ft != nested.modelType {
				return Field{}, fmt.Errorf("field %q: nested serializer %s renders %s, field holds %s",
					name, nested.name, nested.modelType, ft)
			}
			f.Kind = KindRelation
			f.Nested = nested
			if opts.fk != "" {
				fk, ok := t.FieldByName(opts.fk)
				if !ok {
					return Field{}, fmt.Errorf("field %q: foreign key field %s not found", name, opts.fk)
				}
				f.FKField = opts.fk
				f.fkIndex = fk.Index
			}
			return f, nil
		}

		switch ft.Kind() {
		case reflect.String:
			f.Kind = KindString
			if hasRule(rules, "email") {
				f.Kind = KindEmail
			}
		case reflect.Bool:
			f.Kind = KindBool
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f.Kind = KindInteger
		case reflect.Float32, reflect.Float64:
			f.Kind = KindNumber
		case reflect.Struct:
			return Field{}, fmt.Errorf("field %q: relation to %s needs a nested serializer", name, ft)
		default:
			return Field{}, fmt.Errorf("field %q: unsupported type %s", name, sf.Type)
		}
		return f, nil
	}

	return Field{}, fmt.Errorf("field %q is not declared on %s", name, t)
}
