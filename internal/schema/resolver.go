package schema

import (
	"context"
	"reflect"
	"strings"
)

// Resolver produces the value of a single field. Source is the parent object
// value (nil for root fields); args carries coerced argument values.
type Resolver func(ctx context.Context, source any, args map[string]any, info ResolveInfo) (any, error)

// TypeResolver maps a value of an abstract type to its concrete object type
// name.
type TypeResolver func(ctx context.Context, value any) (string, error)

// ResolveInfo describes the field being resolved.
type ResolveInfo struct {
	FieldName  string
	ParentType string
	ReturnType *TypeRef
	Schema     *Schema
	Path       []any
}

// DefaultResolver resolves a field from the source value: map key lookup for
// map sources, exported-field lookup (case-insensitive) for structs.
// Missing entries resolve to null.
func DefaultResolver(ctx context.Context, source any, args map[string]any, info ResolveInfo) (any, error) {
	if source == nil {
		return nil, nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[info.FieldName], nil
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, nil
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if strings.EqualFold(sf.Name, info.FieldName) {
			return rv.Field(i).Interface(), nil
		}
	}
	return nil, nil
}

// DefaultResolveType consults a "__typename" key on map values. It is the
// fallback used when an abstract type has no ResolveType hook.
func DefaultResolveType(ctx context.Context, value any) (string, error) {
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", nil
}
