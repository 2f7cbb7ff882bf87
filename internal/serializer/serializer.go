// Package serializer renders and binds model structs through a declared,
// optionally narrowed, set of fields.
package serializer

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// ErrModelMismatch is returned when an object does not match the serializer's model.
var ErrModelMismatch = errors.New("object does not match serializer model")

// Definition declares a serializer for a model struct.
type Definition struct {
	// Name is the component name, e.g. "User".
	Name string
	// Model is a value or pointer of the model struct.
	Model any
	// Fields lists the wire names to expose, in order.
	Fields []string
	// Nested maps relation fields to the serializer that renders them.
	Nested map[string]*Serializer
}

type options struct {
	restrict bool
	allowed  []string
}

// Option configures a Serializer.
type Option func(*options)

// WithFields narrows the serializer to the given field names.
// Declared fields not listed are dropped; unknown names are ignored.
// Calling WithFields with no names drops every field.
func WithFields(names ...string) Option {
	return func(o *options) {
		o.restrict = true
		o.allowed = append(make([]string, 0, len(names)), names...)
	}
}

// Serializer renders model objects into JSON-ready maps and binds payloads back.
type Serializer struct {
	name      string
	modelType reflect.Type
	declared  []Field
	fields    []Field
}

// New builds a serializer from a definition.
func New(def Definition, opts ...Option) (*Serializer, error) {
	if def.Name == "" {
		return nil, errors.New("serializer name is required")
	}

	t := reflect.TypeOf(def.Model)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("serializer %s: model must be a struct, got %T", def.Name, def.Model)
	}

	s := &Serializer{
		name:      def.Name,
		modelType: t,
		declared:  make([]Field, 0, len(def.Fields)),
	}

	seen := make(map[string]bool, len(def.Fields))
	for _, name := range def.Fields {
		if seen[name] {
			return nil, fmt.Errorf("serializer %s: field %q declared twice", def.Name, name)
		}
		seen[name] = true

		f, err := introspect(t, name, def.Nested[name])
		if err != nil {
			return nil, fmt.Errorf("serializer %s: %w", def.Name, err)
		}
		s.declared = append(s.declared, f)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s.fields = s.declared
	if o.restrict {
		s.fields = make([]Field, 0, len(s.declared))
		for _, f := range s.declared {
			if slices.Contains(o.allowed, f.Name) {
				s.fields = append(s.fields, f)
			}
		}
	}

	return s, nil
}

// MustNew is like New but panics on error. Intended for package-level declarations.
func MustNew(def Definition, opts ...Option) *Serializer {
	s, err := New(def, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the component name.
func (s *Serializer) Name() string { return s.name }

// ModelType returns the struct type the serializer renders.
func (s *Serializer) ModelType() reflect.Type { return s.modelType }

// Fields returns the active fields after narrowing.
func (s *Serializer) Fields() []Field { return slices.Clone(s.fields) }

// Declared returns every declared field, ignoring narrowing.
func (s *Serializer) Declared() []Field { return slices.Clone(s.declared) }

// FieldNames returns the wire names of the active fields.
func (s *Serializer) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Restricted reports whether narrowing dropped any declared field.
func (s *Serializer) Restricted() bool {
	return len(s.fields) != len(s.declared)
}

// Dropped returns the declared field names removed by narrowing.
func (s *Serializer) Dropped() []string {
	var dropped []string
	for _, f := range s.declared {
		if !s.has(f.Name) {
			dropped = append(dropped, f.Name)
		}
	}
	return dropped
}

func (s *Serializer) has(name string) bool {
	for _, f := range s.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// structValue unwraps obj into an addressable-or-not struct value of the model type.
func (s *Serializer) structValue(obj any) (reflect.Value, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil %s", ErrModelMismatch, s.name)
		}
		v = v.Elem()
	}
	if v.Type() != s.modelType {
		return reflect.Value{}, fmt.Errorf("%w: %s expects %s, got %s", ErrModelMismatch, s.name, s.modelType, v.Type())
	}
	return v, nil
}

// Represent renders obj into a map holding only the active fields.
func (s *Serializer) Represent(obj any) (map[string]any, error) {
	v, err := s.structValue(obj)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		fv := v.FieldByIndex(f.index)

		if f.Kind == KindRelation {
			if fv.Kind() == reflect.Pointer && fv.IsNil() {
				out[f.Name] = nil
				continue
			}
			nested, err := f.Nested.Represent(fv.Interface())
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			out[f.Name] = nested
			continue
		}

		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				out[f.Name] = nil
				continue
			}
			fv = fv.Elem()
		}
		out[f.Name] = fv.Interface()
	}

	return out, nil
}

// RepresentList renders a slice of model objects.
func (s *Serializer) RepresentList(objs any) ([]map[string]any, error) {
	v := reflect.ValueOf(objs)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: %s expects a slice, got %T", ErrModelMismatch, s.name, objs)
	}

	out := make([]map[string]any, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		item, err := s.Represent(v.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}
