package schema

import "strings"

// Schema is the mutable registry of named types making up a GraphQL schema.
// External code may replace entries in Types directly; the heal package
// restores consistency afterwards.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type // All named types keyed by name
	Directives       map[string]*Directive
	Description      string
}

// NewSchema creates an empty schema with the given description.
func NewSchema(description string) *Schema {
	return &Schema{
		Types:       map[string]*Type{},
		Directives:  map[string]*Directive{},
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

// AddType registers t under its name, replacing any previous entry.
func (s *Schema) AddType(t *Type) *Schema { s.Types[t.Name] = t; return s }

// AddDirective registers a directive definition under its name.
func (s *Schema) AddDirective(d *Directive) *Schema { s.Directives[d.Name] = d; return s }

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// RootTypeNames returns the names of the designated root types that are set,
// query first.
func (s *Schema) RootTypeNames() []string {
	var roots []string
	for _, name := range []string{s.QueryType, s.MutationType, s.SubscriptionType} {
		if name != "" {
			roots = append(roots, name)
		}
	}
	return roots
}

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // For OBJECT and INTERFACE
	Interfaces     []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes  []string      // For INTERFACE and UNION
	EnumValues     []*EnumValue  // For ENUM
	InputFields    []*InputValue // For INPUT_OBJECT
	SpecifiedByURL *string
	OneOf          bool

	// BuiltIn marks prelude types supplied by the host library; they are
	// never pruned.
	BuiltIn bool

	// ResolveType determines the concrete object type name for a value of
	// this abstract (interface/union) type. When nil, a "__typename" key on
	// map values is consulted.
	ResolveType TypeResolver `json:"-"`
}

// NewType creates a named type of the given kind.
func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type              { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type       { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type    { t.PossibleTypes = append(t.PossibleTypes, name); return t }
func (t *Type) AddEnumValue(v *EnumValue) *Type      { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type    { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type            { t.OneOf = oneOf; return t }
func (t *Type) SetBuiltIn(builtIn bool) *Type        { t.BuiltIn = builtIn; return t }
func (t *Type) SetResolveType(fn TypeResolver) *Type { t.ResolveType = fn; return t }

// Field returns the field definition with the given name, or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IsAbstract reports whether the type is an interface or union.
func (t *Type) IsAbstract() bool {
	return t.Kind == TypeKindInterface || t.Kind == TypeKindUnion
}

// IsIntrospection reports whether name belongs to the introspection type
// family.
func IsIntrospection(name string) bool { return strings.HasPrefix(name, "__") }

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	IsDeprecated      bool
	DeprecationReason string

	// Directives holds the directive annotations declared on this field in
	// SDL, in declaration order, with argument values already coerced.
	Directives []*AppliedDirective

	// Resolver produces the field value. Nil means the default resolver.
	// Ownership is exclusive to this field slot and may be reassigned.
	Resolver Resolver `json:"-"`
}

// NewField creates a field with the given result type.
func NewField(name, description string, t *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: t}
}

func (f *Field) AddArgument(v *InputValue) *Field { f.Arguments = append(f.Arguments, v); return f }
func (f *Field) SetResolver(r Resolver) *Field    { f.Resolver = r; return f }
func (f *Field) AddDirective(d *AppliedDirective) *Field {
	f.Directives = append(f.Directives, d)
	return f
}
func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

// Argument returns the argument definition with the given name, or nil.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AppliedDirective is a directive use site on a field definition.
type AppliedDirective struct {
	Name string
	Args map[string]any
}

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

// NewEnumValue creates an enum value.
func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (e *EnumValue) Deprecate(reason string) *EnumValue {
	e.IsDeprecated = true
	e.DeprecationReason = reason
	return e
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

// NewInputValue creates an input value (argument or input field).
func NewInputValue(name, description string, t *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: t}
}

func (v *InputValue) SetDefault(def any) *InputValue { v.DefaultValue = def; return v }
func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

// NewDirective creates a directive definition.
func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(r bool) *Directive      { d.IsRepeatable = r; return d }
func (d *Directive) AddArgument(v *InputValue) *Directive { d.Arguments = append(d.Arguments, v); return d }

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
