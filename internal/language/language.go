package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseQuery parses a GraphQL query document (syntax only).
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseSchema parses a single SDL source without validating it.
func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates one or more SDL sources. The returned
// schema carries the host library's prelude: built-in scalars, the
// introspection type family, and the standard directives.
func LoadSchema(sources ...*Source) (*Schema, error) {
	return gqlparser.LoadSchema(sources...)
}
