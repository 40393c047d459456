package schema

import (
	"fmt"

	language "github.com/graphmend/graphmend/internal/language"
)

// BuildFromSDL parses and validates a single SDL string through the host
// library and converts it into an executable Schema.
func BuildFromSDL(sdl string) (*Schema, error) {
	return BuildFromSources(&language.Source{Name: "schema.graphql", Input: sdl})
}

// BuildFromSources builds a Schema from one or more SDL sources. Validation
// (type existence, field types, directive locations) is owned by the host
// library; this only converts the validated AST into the mutable type map.
func BuildFromSources(sources ...*language.Source) (*Schema, error) {
	astSchema, err := language.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return BuildFromAST(astSchema)
}

// BuildFromAST converts a validated host-library schema into a Schema.
func BuildFromAST(astSchema *language.Schema) (*Schema, error) {
	s := NewSchema(astSchema.Description)
	if astSchema.Query != nil {
		s.SetQueryType(astSchema.Query.Name)
	}
	if astSchema.Mutation != nil {
		s.SetMutationType(astSchema.Mutation.Name)
	}
	if astSchema.Subscription != nil {
		s.SetSubscriptionType(astSchema.Subscription.Name)
	}

	for name, def := range astSchema.Types {
		t, err := buildType(def)
		if err != nil {
			return nil, err
		}
		if def.Kind == language.Interface {
			for _, impl := range astSchema.PossibleTypes[name] {
				t.AddPossibleType(impl.Name)
			}
		}
		s.AddType(t)
	}
	for _, dir := range astSchema.Directives {
		d, err := buildDirective(dir)
		if err != nil {
			return nil, err
		}
		s.AddDirective(d)
	}
	return s, nil
}

func buildType(def *language.Definition) (*Type, error) {
	var kind TypeKind
	switch def.Kind {
	case language.Object:
		kind = TypeKindObject
	case language.Interface:
		kind = TypeKindInterface
	case language.Union:
		kind = TypeKindUnion
	case language.Scalar:
		kind = TypeKindScalar
	case language.Enum:
		kind = TypeKindEnum
	case language.InputObject:
		kind = TypeKindInputObject
	default:
		return nil, fmt.Errorf("unsupported definition kind %q for type %s", def.Kind, def.Name)
	}

	t := NewType(def.Name, kind, def.Description).SetBuiltIn(def.BuiltIn)
	for _, iface := range def.Interfaces {
		t.AddInterface(iface)
	}
	for _, member := range def.Types {
		t.AddPossibleType(member)
	}

	switch kind {
	case TypeKindObject, TypeKindInterface:
		for _, fd := range def.Fields {
			// The host library injects __schema, __type and __typename
			// meta-fields during validation. They are not part of the SDL and
			// introspection owns its own entry points, so they stay out of
			// the model.
			if IsIntrospection(fd.Name) {
				continue
			}
			f, err := buildField(fd)
			if err != nil {
				return nil, fmt.Errorf("type %s: %w", def.Name, err)
			}
			t.AddField(f)
		}
	case TypeKindInputObject:
		for _, fd := range def.Fields {
			v, err := buildInputValue(fd.Name, fd.Description, fd.Type, fd.DefaultValue, fd.Directives)
			if err != nil {
				return nil, fmt.Errorf("input %s: %w", def.Name, err)
			}
			t.AddInputField(v)
		}
		if def.Directives.ForName("oneOf") != nil {
			t.SetOneOf(true)
		}
	case TypeKindEnum:
		for _, ev := range def.EnumValues {
			t.AddEnumValue(buildEnumValue(ev))
		}
	case TypeKindScalar:
		if sb := def.Directives.ForName("specifiedBy"); sb != nil {
			if arg := sb.Arguments.ForName("url"); arg != nil {
				url := arg.Value.Raw
				t.SpecifiedByURL = &url
			}
		}
	}
	return t, nil
}

func buildField(fd *language.FieldDefinition) (*Field, error) {
	f := NewField(fd.Name, fd.Description, buildTypeRef(fd.Type))
	for _, arg := range fd.Arguments {
		v, err := buildInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		f.AddArgument(v)
	}
	for _, use := range fd.Directives {
		if use.Name == "deprecated" {
			f.Deprecate(deprecationReason(use))
			continue
		}
		applied, err := buildAppliedDirective(use)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		f.AddDirective(applied)
	}
	return f, nil
}

func buildAppliedDirective(use *language.Directive) (*AppliedDirective, error) {
	args := make(map[string]any, len(use.Arguments))
	for _, arg := range use.Arguments {
		v, err := arg.Value.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("directive @%s argument %s: %w", use.Name, arg.Name, err)
		}
		args[arg.Name] = v
	}
	return &AppliedDirective{Name: use.Name, Args: args}, nil
}

func buildInputValue(name, description string, t *language.Type, def *language.Value, dirs language.DirectiveList) (*InputValue, error) {
	v := NewInputValue(name, description, buildTypeRef(t))
	if def != nil {
		dv, err := def.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("argument %s default: %w", name, err)
		}
		v.SetDefault(dv)
	}
	if d := dirs.ForName("deprecated"); d != nil {
		v.Deprecate(deprecationReason(d))
	}
	return v, nil
}

func buildEnumValue(ev *language.EnumValueDefinition) *EnumValue {
	e := NewEnumValue(ev.Name, ev.Description)
	if d := ev.Directives.ForName("deprecated"); d != nil {
		e.Deprecate(deprecationReason(d))
	}
	return e
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(buildTypeRef(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(buildTypeRef(t.Elem))
}

func buildDirective(dir *language.DirectiveDefinition) (*Directive, error) {
	d := NewDirective(dir.Name, dir.Description).SetRepeatable(dir.IsRepeatable)
	for _, loc := range dir.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range dir.Arguments {
		v, err := buildInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives)
		if err != nil {
			return nil, fmt.Errorf("directive @%s: %w", dir.Name, err)
		}
		d.AddArgument(v)
	}
	return d, nil
}

func deprecationReason(use *language.Directive) string {
	if arg := use.Arguments.ForName("reason"); arg != nil {
		return arg.Value.Raw
	}
	return ""
}
