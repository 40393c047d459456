// Package directives wires user-supplied directive resolvers onto the fields
// of a live schema. A directive resolver wraps the field's original resolver
// and decides whether, and when, to invoke it.
package directives

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	multierror "github.com/hashicorp/go-multierror"
	schema "github.com/graphmend/graphmend/internal/schema"
)

// Thunk invokes the wrapped resolver. An error-valued return from the
// underlying resolver is surfaced as a failed result, never as a successful
// value carrying an error.
type Thunk func() (any, error)

// DirectiveResolver wraps a field resolver. args holds the directive's
// argument values captured at the field site; next runs the next resolver in
// the chain (ultimately the field's original resolver).
type DirectiveResolver func(ctx context.Context, next Thunk, source any, args map[string]any, info schema.ResolveInfo) (any, error)

// Map associates directive names with resolvers.
type Map map[string]DirectiveResolver

// Attach replaces the resolver of every field annotated with one of the
// named directives by a wrapper invoking the directive resolver. resolvers
// must be a Map; anything else fails before any field is touched, with an
// error naming the type found.
//
// Directives on a field are applied in declaration order. Each wrapper
// captures the previously installed resolver, so at invocation time the
// last-declared directive resolver is the outermost caller and the
// first-declared one sits closest to the original field resolver.
func Attach(s *schema.Schema, resolvers any) error {
	m, err := coerceMap(resolvers)
	if err != nil {
		return err
	}
	if err := validateMap(m); err != nil {
		return err
	}

	for _, t := range s.Types {
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			continue
		}
		for _, f := range t.Fields {
			for _, use := range f.Directives {
				resolver, ok := m[use.Name]
				if !ok {
					continue
				}
				wrapField(f, resolver, use.Args)
			}
		}
	}
	return nil
}

// coerceMap validates the dynamic shape of the resolvers argument.
func coerceMap(resolvers any) (Map, error) {
	switch m := resolvers.(type) {
	case nil:
		return nil, nil
	case Map:
		return m, nil
	case map[string]DirectiveResolver:
		return m, nil
	}
	if k := reflect.TypeOf(resolvers).Kind(); k == reflect.Slice || k == reflect.Array {
		return nil, fmt.Errorf("expected directive resolvers to be a map, got Array")
	}
	return nil, fmt.Errorf("expected directive resolvers to be a map, got %T", resolvers)
}

// validateMap rejects nil resolver entries up front so that a malformed map
// mutates nothing (all-or-nothing application).
func validateMap(m Map) error {
	var names []string
	for name, r := range m {
		if r == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	var errs *multierror.Error
	for _, name := range names {
		errs = multierror.Append(errs, fmt.Errorf("directive %q has a nil resolver", name))
	}
	return errs.ErrorOrNil()
}

func wrapField(f *schema.Field, resolver DirectiveResolver, args map[string]any) {
	inner := f.Resolver
	if inner == nil {
		inner = schema.DefaultResolver
	}
	f.Resolver = func(ctx context.Context, source any, fieldArgs map[string]any, info schema.ResolveInfo) (any, error) {
		next := Thunk(func() (any, error) {
			v, err := inner(ctx, source, fieldArgs, info)
			if err != nil {
				return nil, err
			}
			if ev, ok := v.(error); ok && ev != nil {
				return nil, ev
			}
			return v, nil
		})
		return resolver(ctx, next, source, args, info)
	}
}
