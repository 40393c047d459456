// Package resolvers binds a resolver map (type name → field name → resolver)
// onto a live schema.
package resolvers

import (
	"fmt"
	"sort"

	multierror "github.com/hashicorp/go-multierror"
	schema "github.com/graphmend/graphmend/internal/schema"
)

// FieldMap associates field names with resolvers.
type FieldMap map[string]schema.Resolver

// Map associates type names with their field resolvers.
type Map map[string]FieldMap

// Attach binds every resolver in m onto the corresponding field of s.
// All entries are validated first; on failure nothing is mutated and the
// returned error aggregates every problem found.
func Attach(s *schema.Schema, m Map) error {
	type binding struct {
		field    *schema.Field
		resolver schema.Resolver
	}
	var pending []binding
	var errs *multierror.Error

	typeNames := make([]string, 0, len(m))
	for name := range m {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, typeName := range typeNames {
		t := s.Types[typeName]
		if t == nil {
			errs = multierror.Append(errs, fmt.Errorf("resolver map references unknown type %q", typeName))
			continue
		}
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			errs = multierror.Append(errs, fmt.Errorf("type %q is a %s and cannot carry field resolvers", typeName, t.Kind))
			continue
		}
		fieldNames := make([]string, 0, len(m[typeName]))
		for name := range m[typeName] {
			fieldNames = append(fieldNames, name)
		}
		sort.Strings(fieldNames)
		for _, fieldName := range fieldNames {
			f := t.Field(fieldName)
			if f == nil {
				errs = multierror.Append(errs, fmt.Errorf("type %q has no field %q", typeName, fieldName))
				continue
			}
			pending = append(pending, binding{field: f, resolver: m[typeName][fieldName]})
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return err
	}
	for _, b := range pending {
		b.field.Resolver = b.resolver
	}
	return nil
}
