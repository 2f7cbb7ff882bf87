// Package schema generates an OpenAPI 3 document from registered routes.
//
// Component schemas are keyed by serializer name and built from the
// serializer's declared fields. A serializer narrowed with
// serializer.WithFields therefore resolves to the full component: the
// narrowing shows up in responses but not in the document. The generator
// logs a warning whenever that happens.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/penshort/roster/internal/router"
	"github.com/penshort/roster/internal/serializer"
	"github.com/penshort/roster/internal/viewset"
)

// OpenAPIVersion is the version written to generated documents.
const OpenAPIVersion = "3.0.3"

const componentPrefix = "#/components/schemas/"

// Options configures a Generator.
type Options struct {
	Title       string
	Version     string
	Description string
	// ServerURL is the base path the routes are mounted under, if any.
	ServerURL string
	Logger    *slog.Logger
}

// Generator builds OpenAPI documents from router routes.
type Generator struct {
	routes []router.Route
	opts   Options
	logger *slog.Logger
}

// NewGenerator creates a Generator over routes.
func NewGenerator(routes []router.Route, opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = "roster"
	}
	if opts.Version == "" {
		opts.Version = "0.0.0"
	}
	return &Generator{routes: routes, opts: opts, logger: logger}
}

// Generate builds and validates the document.
func (g *Generator) Generate(ctx context.Context) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       g.opts.Title,
			Version:     g.opts.Version,
			Description: g.opts.Description,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}

	if g.opts.ServerURL != "" {
		doc.Servers = openapi3.Servers{{URL: g.opts.ServerURL}}
	}

	reg := newRegistry(doc.Components.Schemas, g.logger)

	for _, route := range g.routes {
		s := route.ViewSet.Serializer()

		ref, err := reg.resolve(s)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", route.Path, err)
		}

		item := doc.Paths.Value(route.Path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(route.Path, item)
		}

		for _, ma := range route.Methods {
			op, err := g.operation(route, ma.Action, ref, reg, s)
			if err != nil {
				return nil, fmt.Errorf("route %s %s: %w", ma.Method, route.Path, err)
			}
			item.SetOperation(ma.Method, op)
		}
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("generated document is invalid: %w", err)
	}

	return doc, nil
}

func (g *Generator) operation(route router.Route, action viewset.Action, ref *openapi3.SchemaRef, reg *registry, s *serializer.Serializer) (*openapi3.Operation, error) {
	op := &openapi3.Operation{
		OperationID: operationID(route.Basename, action),
		Tags:        []string{tag(route.Path)},
	}

	if route.Detail {
		param := openapi3.NewPathParameter(viewset.LookupParam).
			WithSchema(openapi3.NewStringSchema()).
			WithDescription(fmt.Sprintf("A unique value identifying this %s.", strings.ToLower(s.Name())))
		op.Parameters = openapi3.Parameters{&openapi3.ParameterRef{Value: param}}
	}

	switch action {
	case viewset.ActionList:
		list := openapi3.NewArraySchema()
		list.Items = ref
		op.Responses = responses(http.StatusOK, "", openapi3.NewSchemaRef("", list))
	case viewset.ActionCreate:
		op.RequestBody = requestBody(ref)
		op.Responses = responses(http.StatusCreated, "", ref)
	case viewset.ActionRetrieve:
		op.Responses = responses(http.StatusOK, "", ref)
	case viewset.ActionUpdate:
		op.RequestBody = requestBody(ref)
		op.Responses = responses(http.StatusOK, "", ref)
	case viewset.ActionPartialUpdate:
		patched, err := reg.resolvePatched(s)
		if err != nil {
			return nil, err
		}
		op.RequestBody = requestBody(patched)
		op.RequestBody.Value.Required = false
		op.Responses = responses(http.StatusOK, "", ref)
	case viewset.ActionDestroy:
		op.Responses = responses(http.StatusNoContent, "No response body", nil)
	default:
		return nil, fmt.Errorf("unsupported action %q", action)
	}

	return op, nil
}

func requestBody(ref *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
	}
}

func responses(status int, description string, ref *openapi3.SchemaRef) *openapi3.Responses {
	if description == "" {
		description = http.StatusText(status)
	}
	resp := openapi3.NewResponse().WithDescription(description)
	if ref != nil {
		resp = resp.WithJSONSchemaRef(ref)
	}
	return openapi3.NewResponses(openapi3.WithStatus(status, &openapi3.ResponseRef{Value: resp}))
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9]+`)

// operationID builds "{basename}_{action}" with separators collapsed to "_".
func operationID(basename string, action viewset.Action) string {
	base := strings.Trim(nonIdent.ReplaceAllString(basename, "_"), "_")
	if base == "" {
		return string(action)
	}
	return base + "_" + string(action)
}

// tag returns the first non-empty path segment.
func tag(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" && !strings.HasPrefix(seg, "{") {
			return seg
		}
	}
	return "default"
}

// registry owns the component schemas of one document.
type registry struct {
	schemas openapi3.Schemas
	models  map[string]reflect.Type
	warned  map[string]bool
	logger  *slog.Logger
}

func newRegistry(schemas openapi3.Schemas, logger *slog.Logger) *registry {
	return &registry{
		schemas: schemas,
		models:  make(map[string]reflect.Type),
		warned:  make(map[string]bool),
		logger:  logger,
	}
}

// resolve returns a $ref to the component for s, building it on first use.
func (r *registry) resolve(s *serializer.Serializer) (*openapi3.SchemaRef, error) {
	name := s.Name()

	if s.Restricted() {
		key := name + ":" + strings.Join(s.Dropped(), ",")
		if !r.warned[key] {
			r.warned[key] = true
			r.logger.Warn("dynamic field restriction is not reflected in component schema",
				"component", name,
				"dropped_fields", s.Dropped(),
			)
		}
	}

	if err := r.claim(name, s.ModelType()); err != nil {
		return nil, err
	}
	if existing, ok := r.schemas[name]; ok {
		return openapi3.NewSchemaRef(componentPrefix+name, existing.Value), nil
	}

	// Registered before its properties so self references terminate.
	component := openapi3.NewObjectSchema()
	r.schemas[name] = openapi3.NewSchemaRef("", component)

	for _, f := range s.Declared() {
		prop, err := r.property(f)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
		component.Properties[f.Name] = prop
		if f.Required && !f.ReadOnly {
			component.Required = append(component.Required, f.Name)
		}
	}

	return openapi3.NewSchemaRef(componentPrefix+name, component), nil
}

// resolvePatched returns a $ref to the Patched{Name} component used by
// partial updates: same properties, nothing required.
func (r *registry) resolvePatched(s *serializer.Serializer) (*openapi3.SchemaRef, error) {
	full, err := r.resolve(s)
	if err != nil {
		return nil, err
	}

	name := "Patched" + s.Name()
	if err := r.claim(name, s.ModelType()); err != nil {
		return nil, err
	}
	if existing, ok := r.schemas[name]; ok {
		return openapi3.NewSchemaRef(componentPrefix+name, existing.Value), nil
	}

	patched := openapi3.NewObjectSchema()
	for k, v := range full.Value.Properties {
		patched.Properties[k] = v
	}
	r.schemas[name] = openapi3.NewSchemaRef("", patched)

	return openapi3.NewSchemaRef(componentPrefix+name, patched), nil
}

// claim fails when name is already used by a different model.
func (r *registry) claim(name string, model reflect.Type) error {
	if prev, ok := r.models[name]; ok && prev != model {
		return fmt.Errorf("component name %q used by both %s and %s", name, prev, model)
	}
	r.models[name] = model
	return nil
}

func (r *registry) property(f serializer.Field) (*openapi3.SchemaRef, error) {
	var s *openapi3.Schema

	switch f.Kind {
	case serializer.KindRelation:
		// Siblings of $ref are ignored in OpenAPI 3.0, so relations are a bare reference.
		return r.resolve(f.Nested)
	case serializer.KindString:
		s = openapi3.NewStringSchema()
	case serializer.KindEmail:
		s = openapi3.NewStringSchema().WithFormat("email")
	case serializer.KindBool:
		s = openapi3.NewBoolSchema()
	case serializer.KindInteger:
		s = openapi3.NewIntegerSchema()
	case serializer.KindNumber:
		s = openapi3.NewFloat64Schema()
	default:
		return nil, fmt.Errorf("field %s: unsupported kind %s", f.Name, f.Kind)
	}

	if f.MaxLength > 0 {
		s.WithMaxLength(int64(f.MaxLength))
	}
	s.Nullable = f.Nullable
	s.ReadOnly = f.ReadOnly
	if f.Label != "" && !trivialLabel(f.Label, f.Name) {
		s.Title = f.Label
	}

	return openapi3.NewSchemaRef("", s), nil
}

// trivialLabel reports whether label only restates the field name.
func trivialLabel(label, name string) bool {
	norm := func(v string) string {
		return strings.ToLower(strings.NewReplacer("_", "", " ", "", "-", "").Replace(v))
	}
	return norm(label) == norm(name)
}
