package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

var jsonNull = []byte("null")

// relationRef is the accepted write shape of a nested relation.
type relationRef struct {
	ID string `json:"id"`
}

// Bind applies payload onto dst, a pointer to the serializer's model.
// Read-only and unknown keys are ignored. Unless partial is set, every
// required writable field must be present. Bound values are validated
// with the model's `validate` rules.
func (s *Serializer) Bind(payload map[string]json.RawMessage, dst any, partial bool) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != s.modelType {
		return fmt.Errorf("%w: %s binds into *%s, got %T", ErrModelMismatch, s.name, s.modelType, dst)
	}
	v := rv.Elem()

	errs := make(map[string]string)
	var touched []string

	for _, f := range s.fields {
		if f.ReadOnly {
			continue
		}

		raw, ok := payload[f.Name]
		if !ok {
			if f.Required && !partial {
				errs[f.Name] = msgRequired
			}
			continue
		}

		isNull := bytes.Equal(bytes.TrimSpace(raw), jsonNull)
		if isNull && !f.Nullable {
			errs[f.Name] = msgNull
			continue
		}

		fv := v.FieldByIndex(f.index)

		if f.Kind == KindRelation {
			fv.Set(reflect.Zero(fv.Type()))
			if f.fkIndex == nil {
				continue
			}
			fk := v.FieldByIndex(f.fkIndex)
			if isNull {
				fk.Set(reflect.Zero(fk.Type()))
				continue
			}
			var ref relationRef
			if err := json.Unmarshal(raw, &ref); err != nil || ref.ID == "" {
				errs[f.Name] = msgRelation
				continue
			}
			if err := setString(fk, ref.ID); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
			continue
		}

		if isNull {
			fv.Set(reflect.Zero(fv.Type()))
			continue
		}

		target := reflect.New(fv.Type())
		if err := json.Unmarshal(raw, target.Interface()); err != nil {
			errs[f.Name] = msgInvalid
			continue
		}
		fv.Set(target.Elem())
		touched = append(touched, f.GoName)
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	if len(touched) > 0 {
		if err := validate.StructPartial(dst, touched...); err != nil {
			return &ValidationError{Fields: toFieldErrors(err)}
		}
	}

	return nil
}

// setString stores id into a string or *string field.
func setString(fv reflect.Value, id string) error {
	switch {
	case fv.Kind() == reflect.String:
		fv.SetString(id)
	case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.String:
		fv.Set(reflect.ValueOf(&id))
	default:
		return fmt.Errorf("foreign key field must be string or *string, got %s", fv.Type())
	}
	return nil
}
