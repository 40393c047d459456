package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema.
// Deterministic ordering: type/directive names sorted lexicographically.
// Host-library prelude types and introspection types are omitted.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	typeNames := make([]string, 0, len(s.Types))
	for name, typ := range s.Types {
		if typ.BuiltIn || IsIntrospection(name) {
			continue
		}
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, name := range typeNames {
		typ := s.Types[name]
		switch typ.Kind {
		case TypeKindScalar:
			renderScalar(&b, typ)
		case TypeKindEnum:
			renderEnum(&b, typ)
		case TypeKindInputObject:
			renderInputObject(&b, typ)
		case TypeKindObject:
			renderObject(&b, typ)
		case TypeKindInterface:
			renderInterface(&b, typ)
		case TypeKindUnion:
			renderUnion(&b, typ)
		}
	}

	directiveNames := make([]string, 0, len(s.Directives))
	for name := range s.Directives {
		if isBuiltInDirective(name) {
			continue
		}
		directiveNames = append(directiveNames, name)
	}
	sort.Strings(directiveNames)
	for _, name := range directiveNames {
		renderDirective(&b, s.Directives[name])
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// isBuiltInDirective reports whether the directive belongs to the host
// library's prelude.
func isBuiltInDirective(name string) bool {
	switch name {
	case "include", "skip", "deprecated", "specifiedBy", "defer", "oneOf":
		return true
	}
	return false
}

// ----- render helpers -----

func renderDescription(b *strings.Builder, desc string) {
	if desc == "" {
		return
	}
	b.WriteString("\"\"\"\n")
	escaped := strings.ReplaceAll(desc, "\"", "\\\"")
	b.WriteString(escaped)
	b.WriteString("\n\"\"\"\n")
}

func renderScalar(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString("scalar ")
	b.WriteString(typ.Name)
	if typ.SpecifiedByURL != nil {
		b.WriteString(" @specifiedBy(url: \"")
		b.WriteString(*typ.SpecifiedByURL)
		b.WriteString("\")")
	}
	b.WriteString("\n\n")
}

func renderEnum(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString("enum ")
	b.WriteString(typ.Name)
	b.WriteString(" {\n")
	for _, val := range typ.EnumValues {
		renderDescription(b, val.Description)
		b.WriteString("  ")
		b.WriteString(val.Name)
		if val.IsDeprecated {
			renderDeprecated(b, val.DeprecationReason)
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderInputObject(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString("input ")
	b.WriteString(typ.Name)
	if typ.OneOf {
		b.WriteString(" @oneOf")
	}
	b.WriteString(" {\n")
	for _, field := range typ.InputFields {
		renderDescription(b, field.Description)
		b.WriteString("  ")
		b.WriteString(field.Name)
		b.WriteString(": ")
		b.WriteString(renderTypeRef(field.Type))
		if field.DefaultValue != nil {
			b.WriteString(" = ")
			b.WriteString(renderValue(field.DefaultValue))
		}
		if field.IsDeprecated {
			renderDeprecated(b, field.DeprecationReason)
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderObject(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString("type ")
	b.WriteString(typ.Name)
	renderImplements(b, typ.Interfaces)
	b.WriteString(" {\n")
	for _, field := range typ.Fields {
		renderField(b, field)
	}
	b.WriteString("}\n\n")
}

func renderInterface(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString("interface ")
	b.WriteString(typ.Name)
	renderImplements(b, typ.Interfaces)
	b.WriteString(" {\n")
	for _, field := range typ.Fields {
		renderField(b, field)
	}
	b.WriteString("}\n\n")
}

func renderImplements(b *strings.Builder, interfaces []string) {
	if len(interfaces) == 0 {
		return
	}
	b.WriteString(" implements ")
	for i, iface := range interfaces {
		if i > 0 {
			b.WriteString(" & ")
		}
		b.WriteString(iface)
	}
}

func renderUnion(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description)
	b.WriteString("union ")
	b.WriteString(typ.Name)
	b.WriteString(" = ")
	for i, possibleType := range typ.PossibleTypes {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(possibleType)
	}
	b.WriteString("\n\n")
}

func renderField(b *strings.Builder, field *Field) {
	renderDescription(b, field.Description)
	b.WriteString("  ")
	b.WriteString(field.Name)
	if len(field.Arguments) > 0 {
		b.WriteString("(")
		for i, arg := range field.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.Name)
			b.WriteString(": ")
			b.WriteString(renderTypeRef(arg.Type))
			if arg.DefaultValue != nil {
				b.WriteString(" = ")
				b.WriteString(renderValue(arg.DefaultValue))
			}
		}
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(renderTypeRef(field.Type))

	for _, use := range field.Directives {
		b.WriteString(" @")
		b.WriteString(use.Name)
		if len(use.Args) > 0 {
			argNames := make([]string, 0, len(use.Args))
			for name := range use.Args {
				argNames = append(argNames, name)
			}
			sort.Strings(argNames)
			b.WriteString("(")
			for i, name := range argNames {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(name)
				b.WriteString(": ")
				b.WriteString(renderValue(use.Args[name]))
			}
			b.WriteString(")")
		}
	}

	if field.IsDeprecated {
		renderDeprecated(b, field.DeprecationReason)
	}
	b.WriteString("\n")
}

func renderDeprecated(b *strings.Builder, reason string) {
	b.WriteString(" @deprecated")
	if reason != "" {
		b.WriteString("(reason: \"")
		b.WriteString(reason)
		b.WriteString("\")")
	}
}

func renderDirective(b *strings.Builder, directive *Directive) {
	renderDescription(b, directive.Description)
	b.WriteString("directive @")
	b.WriteString(directive.Name)
	if len(directive.Arguments) > 0 {
		b.WriteString("(")
		for i, arg := range directive.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.Name)
			b.WriteString(": ")
			b.WriteString(renderTypeRef(arg.Type))
			if arg.DefaultValue != nil {
				b.WriteString(" = ")
				b.WriteString(renderValue(arg.DefaultValue))
			}
		}
		b.WriteString(")")
	}
	if directive.IsRepeatable {
		b.WriteString(" repeatable")
	}
	b.WriteString(" on ")
	for i, location := range directive.Locations {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(location)
	}
	b.WriteString("\n\n")
}

func renderTypeRef(typeRef *TypeRef) string {
	if typeRef == nil {
		return ""
	}
	switch typeRef.Kind {
	case TypeRefKindNamed:
		return typeRef.Named
	case TypeRefKindList:
		return "[" + renderTypeRef(typeRef.OfType) + "]"
	case TypeRefKindNonNull:
		return renderTypeRef(typeRef.OfType) + "!"
	default:
		return ""
	}
}

// FormatValue renders a Go value as a GraphQL literal (default values,
// directive arguments, introspection defaultValue strings).
func FormatValue(value any) string { return renderValue(value) }

// renderValue renders a GraphQL value (for default values, directive arguments, etc.)
func renderValue(value any) string {
	if value == nil {
		return "null"
	}
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		var parts []string
		for _, item := range v {
			parts = append(parts, renderValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		names := make([]string, 0, len(v))
		for k := range v {
			names = append(names, k)
		}
		sort.Strings(names)
		var parts []string
		for _, k := range names {
			parts = append(parts, k+": "+renderValue(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		// Enum values and other unquoted symbols
		return fmt.Sprint(v)
	}
}
