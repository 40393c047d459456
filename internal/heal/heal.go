// Package heal restores a schema's type map to a consistent, minimal state
// after external code has mutated it directly. It removes composite types
// left without any members and types no longer reachable from the root
// operation types.
package heal

import (
	"context"
	"sort"
	"time"

	eventbus "github.com/graphmend/graphmend/internal/eventbus"
	events "github.com/graphmend/graphmend/internal/events"
	schema "github.com/graphmend/graphmend/internal/schema"
)

// Heal mutates s.Types in place. It never fails on structurally valid input
// and is idempotent: healing an already-healed schema changes nothing.
//
// The pass has two phases:
//  1. Remove Object/Interface types with zero fields, InputObject types with
//     zero input fields, and Enum types with zero values.
//  2. Remove every type not reachable from the designated root types over
//     field-result, field-argument, interface-implementation and
//     union/interface-membership edges.
//
// Prelude types, introspection types, scalars, and the root types themselves
// are never removed.
func Heal(s *schema.Schema) {
	start := time.Now()
	removed := pruneEmpty(s)
	removed = append(removed, pruneUnreachable(s)...)
	sort.Strings(removed)

	eventbus.Publish(context.Background(), events.SchemaHeal{
		Removed:   removed,
		TypeCount: len(s.Types),
		Duration:  time.Since(start),
	})
}

// exempt reports whether t may never be pruned.
func exempt(t *schema.Type) bool {
	return t.BuiltIn || schema.IsIntrospection(t.Name) || t.Kind == schema.TypeKindScalar
}

// pruneEmpty removes composite types whose member set has zero own entries.
// Emptiness is a syntactic check on the current member count; fields with
// dangling result types are the host library's validation concern and are
// not stripped here. Root types are retained even when emptied.
func pruneEmpty(s *schema.Schema) []string {
	roots := make(map[string]bool)
	for _, name := range s.RootTypeNames() {
		roots[name] = true
	}

	var removed []string
	for name, t := range s.Types {
		if roots[name] || exempt(t) {
			continue
		}
		empty := false
		switch t.Kind {
		case schema.TypeKindObject, schema.TypeKindInterface:
			empty = len(t.Fields) == 0
		case schema.TypeKindInputObject:
			empty = len(t.InputFields) == 0
		case schema.TypeKindEnum:
			empty = len(t.EnumValues) == 0
		}
		if empty {
			delete(s.Types, name)
			removed = append(removed, name)
		}
	}
	return removed
}

// pruneUnreachable removes types not visited by a traversal from the root
// types. Roots are always retained even when nothing else references them.
func pruneUnreachable(s *schema.Schema) []string {
	roots := make(map[string]bool)
	for _, name := range s.RootTypeNames() {
		roots[name] = true
	}

	visited := make(map[string]bool, len(s.Types))
	stack := make([]string, 0, len(roots))
	for name := range roots {
		stack = append(stack, name)
	}

	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[name] {
			continue
		}
		t := s.Types[name]
		if t == nil {
			// Dangling reference; membership of the referencing field is the
			// host library's concern, not ours.
			continue
		}
		visited[name] = true
		stack = append(stack, edges(t)...)
	}

	var removed []string
	for name, t := range s.Types {
		if visited[name] || roots[name] || exempt(t) {
			continue
		}
		delete(s.Types, name)
		removed = append(removed, name)
	}
	return removed
}

// edges returns the named types directly referenced by t.
func edges(t *schema.Type) []string {
	var out []string
	for _, f := range t.Fields {
		out = append(out, schema.GetNamedType(f.Type))
		for _, arg := range f.Arguments {
			out = append(out, schema.GetNamedType(arg.Type))
		}
	}
	for _, v := range t.InputFields {
		out = append(out, schema.GetNamedType(v.Type))
	}
	out = append(out, t.Interfaces...)
	out = append(out, t.PossibleTypes...)
	return out
}
