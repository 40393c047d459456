// Package introspection extends an executable schema with the __Schema /
// __Type type family and the Query.__schema / Query.__type entry points.
// Resolvers are attached directly to the introspection fields, so the
// extended schema runs on the ordinary executor with no special casing.
package introspection

import (
	"context"
	"sort"

	schema "github.com/graphmend/graphmend/internal/schema"
)

// Extend returns a copy of s whose Query type answers introspection queries.
// The original schema is not modified.
func Extend(s *schema.Schema) *schema.Schema {
	extended := &schema.Schema{
		QueryType:        s.QueryType,
		MutationType:     s.MutationType,
		SubscriptionType: s.SubscriptionType,
		Types:            make(map[string]*schema.Type, len(s.Types)+8),
		Directives:       s.Directives,
		Description:      s.Description,
	}
	for name, t := range s.Types {
		extended.Types[name] = t
	}

	addIntrospectionTypes(extended)

	queryType := extended.GetQueryType()
	if queryType == nil {
		return extended
	}
	queryCopy := &schema.Type{
		Name:        queryType.Name,
		Kind:        queryType.Kind,
		Description: queryType.Description,
		Fields:      append([]*schema.Field(nil), queryType.Fields...),
		Interfaces:  queryType.Interfaces,
	}
	queryCopy.AddField(schema.NewField(
		"__schema",
		"Access the current type schema of this server.",
		schema.NonNullType(schema.NamedType("__Schema")),
	).SetResolver(func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return extended, nil
	}))
	queryCopy.AddField(schema.NewField(
		"__type",
		"Request the type information of a single type.",
		schema.NamedType("__Type"),
	).AddArgument(
		schema.NewInputValue("name", "The name of the type to look up.", schema.NonNullType(schema.NamedType("String"))),
	).SetResolver(func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		name, _ := args["name"].(string)
		if t, ok := extended.Types[name]; ok {
			return t, nil
		}
		return nil, nil
	}))
	extended.Types[queryCopy.Name] = queryCopy

	return extended
}

func addIntrospectionTypes(s *schema.Schema) {
	s.AddType(schemaType(s)).
		AddType(typeType(s)).
		AddType(fieldType(s)).
		AddType(inputValueType(s)).
		AddType(enumValueType()).
		AddType(directiveType()).
		AddType(typeKindEnum()).
		AddType(directiveLocationEnum())
}

// resolve builds a Resolver from a plain (source, args) function.
func resolve(fn func(source any, args map[string]any) (any, error)) schema.Resolver {
	return func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return fn(source, args)
	}
}

// namedType resolves a type source value: either a *schema.Type directly or
// a NAMED type reference.
func namedType(s *schema.Schema, source any) *schema.Type {
	switch v := source.(type) {
	case *schema.Type:
		return v
	case *schema.TypeRef:
		if v.Kind == schema.TypeRefKindNamed {
			return s.Types[v.Named]
		}
	}
	return nil
}

func includeDeprecatedArg() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false)
}

func schemaType(s *schema.Schema) *schema.Type {
	t := schema.NewType("__Schema", schema.TypeKindObject,
		"A GraphQL Schema defines the capabilities of a GraphQL server.").SetBuiltIn(true)

	t.AddField(schema.NewField("description", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.Schema).Description, nil
		})))
	t.AddField(schema.NewField("types", "A list of all types supported by this server.",
		schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Type"))))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			sch := source.(*schema.Schema)
			names := make([]string, 0, len(sch.Types))
			for name := range sch.Types {
				names = append(names, name)
			}
			sort.Strings(names)
			out := make([]any, len(names))
			for i, name := range names {
				out[i] = sch.Types[name]
			}
			return out, nil
		})))
	t.AddField(schema.NewField("queryType", "The type that query operations will be rooted at.",
		schema.NonNullType(schema.NamedType("__Type"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.Schema).GetQueryType(), nil
		})))
	t.AddField(schema.NewField("mutationType", "", schema.NamedType("__Type")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.Schema).GetMutationType(), nil
		})))
	t.AddField(schema.NewField("subscriptionType", "", schema.NamedType("__Type")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.Schema).GetSubscriptionType(), nil
		})))
	t.AddField(schema.NewField("directives", "A list of all directives supported by this server.",
		schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Directive"))))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			sch := source.(*schema.Schema)
			names := make([]string, 0, len(sch.Directives))
			for name := range sch.Directives {
				names = append(names, name)
			}
			sort.Strings(names)
			out := make([]any, len(names))
			for i, name := range names {
				out[i] = sch.Directives[name]
			}
			return out, nil
		})))
	return t
}

func typeType(s *schema.Schema) *schema.Type {
	t := schema.NewType("__Type", schema.TypeKindObject,
		"The fundamental unit of the GraphQL type system.").SetBuiltIn(true)

	t.AddField(schema.NewField("kind", "", schema.NonNullType(schema.NamedType("__TypeKind"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if ref, ok := source.(*schema.TypeRef); ok {
				switch ref.Kind {
				case schema.TypeRefKindList:
					return "LIST", nil
				case schema.TypeRefKindNonNull:
					return "NON_NULL", nil
				}
			}
			if nt := namedType(s, source); nt != nil {
				return string(nt.Kind), nil
			}
			return nil, nil
		})))
	t.AddField(schema.NewField("name", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if nt := namedType(s, source); nt != nil {
				return nt.Name, nil
			}
			return nil, nil
		})))
	t.AddField(schema.NewField("description", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if nt := namedType(s, source); nt != nil && nt.Description != "" {
				return nt.Description, nil
			}
			return nil, nil
		})))
	t.AddField(schema.NewField("specifiedByURL", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if nt := namedType(s, source); nt != nil && nt.SpecifiedByURL != nil {
				return *nt.SpecifiedByURL, nil
			}
			return nil, nil
		})))
	t.AddField(schema.NewField("fields", "", schema.ListType(schema.NonNullType(schema.NamedType("__Field")))).
		AddArgument(includeDeprecatedArg()).
		SetResolver(resolve(func(source any, args map[string]any) (any, error) {
			nt := namedType(s, source)
			if nt == nil || (nt.Kind != schema.TypeKindObject && nt.Kind != schema.TypeKindInterface) {
				return nil, nil
			}
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := make([]any, 0, len(nt.Fields))
			for _, f := range nt.Fields {
				if f.IsDeprecated && !includeDeprecated {
					continue
				}
				out = append(out, f)
			}
			return out, nil
		})))
	t.AddField(schema.NewField("interfaces", "", schema.ListType(schema.NonNullType(schema.NamedType("__Type")))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			nt := namedType(s, source)
			if nt == nil || (nt.Kind != schema.TypeKindObject && nt.Kind != schema.TypeKindInterface) {
				return nil, nil
			}
			out := make([]any, 0, len(nt.Interfaces))
			for _, name := range nt.Interfaces {
				if it := s.Types[name]; it != nil {
					out = append(out, it)
				}
			}
			return out, nil
		})))
	t.AddField(schema.NewField("possibleTypes", "", schema.ListType(schema.NonNullType(schema.NamedType("__Type")))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			nt := namedType(s, source)
			if nt == nil || !nt.IsAbstract() {
				return nil, nil
			}
			names := append([]string(nil), nt.PossibleTypes...)
			sort.Strings(names)
			out := make([]any, 0, len(names))
			for _, name := range names {
				if pt := s.Types[name]; pt != nil {
					out = append(out, pt)
				}
			}
			return out, nil
		})))
	t.AddField(schema.NewField("enumValues", "", schema.ListType(schema.NonNullType(schema.NamedType("__EnumValue")))).
		AddArgument(includeDeprecatedArg()).
		SetResolver(resolve(func(source any, args map[string]any) (any, error) {
			nt := namedType(s, source)
			if nt == nil || nt.Kind != schema.TypeKindEnum {
				return nil, nil
			}
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := make([]any, 0, len(nt.EnumValues))
			for _, ev := range nt.EnumValues {
				if ev.IsDeprecated && !includeDeprecated {
					continue
				}
				out = append(out, ev)
			}
			return out, nil
		})))
	t.AddField(schema.NewField("inputFields", "", schema.ListType(schema.NonNullType(schema.NamedType("__InputValue")))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			nt := namedType(s, source)
			if nt == nil || nt.Kind != schema.TypeKindInputObject {
				return nil, nil
			}
			out := make([]any, 0, len(nt.InputFields))
			for _, v := range nt.InputFields {
				out = append(out, v)
			}
			return out, nil
		})))
	t.AddField(schema.NewField("ofType", "", schema.NamedType("__Type")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if ref, ok := source.(*schema.TypeRef); ok && ref.Kind != schema.TypeRefKindNamed {
				return ref.OfType, nil
			}
			return nil, nil
		})))
	t.AddField(schema.NewField("isOneOf", "", schema.NamedType("Boolean")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if nt := namedType(s, source); nt != nil {
				return nt.OneOf, nil
			}
			return nil, nil
		})))
	return t
}

func fieldType(s *schema.Schema) *schema.Type {
	t := schema.NewType("__Field", schema.TypeKindObject,
		"Object and Interface types are described by a list of Fields.").SetBuiltIn(true)

	t.AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.Field).Name, nil
		})))
	t.AddField(schema.NewField("description", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if f := source.(*schema.Field); f.Description != "" {
				return f.Description, nil
			}
			return nil, nil
		})))
	t.AddField(schema.NewField("args", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue"))))).
		AddArgument(includeDeprecatedArg()).
		SetResolver(resolve(func(source any, args map[string]any) (any, error) {
			f := source.(*schema.Field)
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := make([]any, 0, len(f.Arguments))
			for _, arg := range f.Arguments {
				if arg.IsDeprecated && !includeDeprecated {
					continue
				}
				out = append(out, arg)
			}
			return out, nil
		})))
	t.AddField(schema.NewField("type", "", schema.NonNullType(schema.NamedType("__Type"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.Field).Type, nil
		})))
	t.AddField(schema.NewField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.Field).IsDeprecated, nil
		})))
	t.AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if f := source.(*schema.Field); f.IsDeprecated {
				return f.DeprecationReason, nil
			}
			return nil, nil
		})))
	return t
}

func inputValueType(s *schema.Schema) *schema.Type {
	t := schema.NewType("__InputValue", schema.TypeKindObject,
		"Arguments and input-object fields are represented as Input Values.").SetBuiltIn(true)

	t.AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.InputValue).Name, nil
		})))
	t.AddField(schema.NewField("description", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if v := source.(*schema.InputValue); v.Description != "" {
				return v.Description, nil
			}
			return nil, nil
		})))
	t.AddField(schema.NewField("type", "", schema.NonNullType(schema.NamedType("__Type"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.InputValue).Type, nil
		})))
	t.AddField(schema.NewField("defaultValue", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			v := source.(*schema.InputValue)
			if v.DefaultValue == nil {
				return nil, nil
			}
			return schema.FormatValue(v.DefaultValue), nil
		})))
	t.AddField(schema.NewField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.InputValue).IsDeprecated, nil
		})))
	t.AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if v := source.(*schema.InputValue); v.IsDeprecated {
				return v.DeprecationReason, nil
			}
			return nil, nil
		})))
	return t
}

func enumValueType() *schema.Type {
	t := schema.NewType("__EnumValue", schema.TypeKindObject,
		"One possible value for a given Enum.").SetBuiltIn(true)

	t.AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.EnumValue).Name, nil
		})))
	t.AddField(schema.NewField("description", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if v := source.(*schema.EnumValue); v.Description != "" {
				return v.Description, nil
			}
			return nil, nil
		})))
	t.AddField(schema.NewField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.EnumValue).IsDeprecated, nil
		})))
	t.AddField(schema.NewField("deprecationReason", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if v := source.(*schema.EnumValue); v.IsDeprecated {
				return v.DeprecationReason, nil
			}
			return nil, nil
		})))
	return t
}

func directiveType() *schema.Type {
	t := schema.NewType("__Directive", schema.TypeKindObject,
		"A Directive provides a way to describe alternate runtime behavior.").SetBuiltIn(true)

	t.AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType("String"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.Directive).Name, nil
		})))
	t.AddField(schema.NewField("description", "", schema.NamedType("String")).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			if d := source.(*schema.Directive); d.Description != "" {
				return d.Description, nil
			}
			return nil, nil
		})))
	t.AddField(schema.NewField("locations", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__DirectiveLocation"))))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			d := source.(*schema.Directive)
			out := make([]any, len(d.Locations))
			for i, loc := range d.Locations {
				out[i] = loc
			}
			return out, nil
		})))
	t.AddField(schema.NewField("args", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue"))))).
		AddArgument(includeDeprecatedArg()).
		SetResolver(resolve(func(source any, args map[string]any) (any, error) {
			d := source.(*schema.Directive)
			includeDeprecated, _ := args["includeDeprecated"].(bool)
			out := make([]any, 0, len(d.Arguments))
			for _, arg := range d.Arguments {
				if arg.IsDeprecated && !includeDeprecated {
					continue
				}
				out = append(out, arg)
			}
			return out, nil
		})))
	t.AddField(schema.NewField("isRepeatable", "", schema.NonNullType(schema.NamedType("Boolean"))).
		SetResolver(resolve(func(source any, _ map[string]any) (any, error) {
			return source.(*schema.Directive).IsRepeatable, nil
		})))
	return t
}

func typeKindEnum() *schema.Type {
	t := schema.NewType("__TypeKind", schema.TypeKindEnum,
		"An enum describing what kind of type a given __Type is.").SetBuiltIn(true)
	for _, name := range []string{"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"} {
		t.AddEnumValue(schema.NewEnumValue(name, ""))
	}
	return t
}

func directiveLocationEnum() *schema.Type {
	t := schema.NewType("__DirectiveLocation", schema.TypeKindEnum,
		"A Directive can be adjacent to many parts of the GraphQL language.").SetBuiltIn(true)
	for _, name := range []string{
		"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION",
		"FRAGMENT_SPREAD", "INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA",
		"SCALAR", "OBJECT", "FIELD_DEFINITION", "ARGUMENT_DEFINITION",
		"INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
		"INPUT_FIELD_DEFINITION",
	} {
		t.AddEnumValue(schema.NewEnumValue(name, ""))
	}
	return t
}
