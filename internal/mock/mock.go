// Package mock fills a schema's unresolved fields with deterministic mock
// resolvers so that a schema-first project can be served and queried before
// any real resolver exists.
package mock

import (
	"context"

	schema "github.com/graphmend/graphmend/internal/schema"
)

// Deterministic leaf values, one per built-in scalar.
const (
	StringValue = "Hello World"
	IntValue    = 42
	FloatValue  = 12.3
	IDValue     = "1"
	BoolValue   = true

	// listLength is the element count of mocked list values.
	listLength = 2
)

// Attach assigns a mock resolver to every Object and Interface field that has
// none. Fields that already carry a resolver are left alone, so mocks compose
// with partial resolver maps.
func Attach(s *schema.Schema) {
	for _, t := range s.Types {
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			continue
		}
		if t.BuiltIn || schema.IsIntrospection(t.Name) {
			continue
		}
		for _, f := range t.Fields {
			if f.Resolver == nil {
				f.Resolver = resolverFor(s, f.Type)
			}
		}
	}
}

func resolverFor(s *schema.Schema, t *schema.TypeRef) schema.Resolver {
	return func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return valueFor(s, t), nil
	}
}

// valueFor produces a mock value for the given type reference.
func valueFor(s *schema.Schema, ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.IsNonNull() {
		return valueFor(s, ref.Unwrap())
	}
	if ref.IsList() {
		items := make([]any, listLength)
		for i := range items {
			items[i] = valueFor(s, ref.Unwrap())
		}
		return items
	}

	t := s.Types[ref.GetNamedType()]
	if t == nil {
		return nil
	}
	switch t.Kind {
	case schema.TypeKindScalar:
		return scalarValue(t.Name)
	case schema.TypeKindEnum:
		if len(t.EnumValues) == 0 {
			return nil
		}
		return t.EnumValues[0].Name
	case schema.TypeKindObject:
		return map[string]any{}
	case schema.TypeKindInterface, schema.TypeKindUnion:
		// Pick the first possible type so completion has a concrete target.
		if len(t.PossibleTypes) == 0 {
			return nil
		}
		return map[string]any{"__typename": t.PossibleTypes[0]}
	default:
		return nil
	}
}

func scalarValue(name string) any {
	switch name {
	case "String":
		return StringValue
	case "Int":
		return IntValue
	case "Float":
		return FloatValue
	case "ID":
		return IDValue
	case "Boolean":
		return BoolValue
	default:
		// Custom scalars mock as their own name.
		return name
	}
}
