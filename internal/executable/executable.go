// Package executable assembles an executable schema from SDL type
// definitions, a resolver map, and optional directive resolvers.
package executable

import (
	"fmt"

	directives "github.com/graphmend/graphmend/internal/directives"
	language "github.com/graphmend/graphmend/internal/language"
	resolvers "github.com/graphmend/graphmend/internal/resolvers"
	schema "github.com/graphmend/graphmend/internal/schema"
)

// Config describes an executable schema.
type Config struct {
	// TypeDefs is the SDL source. Parsing and validation are owned by the
	// host library.
	TypeDefs string

	// Sources may be set instead of TypeDefs to build from multiple SDL
	// files.
	Sources []*language.Source

	// Resolvers maps type and field names to resolver functions.
	Resolvers resolvers.Map

	// DirectiveResolvers maps directive names to resolver wrappers,
	// applied after the resolver map.
	DirectiveResolvers directives.Map
}

// Build parses and validates the type definitions, converts them into a
// mutable schema, and attaches the resolver and directive maps. It fails
// fast: an invalid configuration surfaces here, at build time, never at
// query time.
func Build(cfg Config) (*schema.Schema, error) {
	sources := cfg.Sources
	if cfg.TypeDefs != "" {
		sources = append([]*language.Source{{Name: "typeDefs.graphql", Input: cfg.TypeDefs}}, sources...)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no type definitions provided")
	}

	s, err := schema.BuildFromSources(sources...)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if len(cfg.Resolvers) > 0 {
		if err := resolvers.Attach(s, cfg.Resolvers); err != nil {
			return nil, fmt.Errorf("bind resolvers: %w", err)
		}
	}
	if cfg.DirectiveResolvers != nil {
		if err := directives.Attach(s, cfg.DirectiveResolvers); err != nil {
			return nil, fmt.Errorf("attach directive resolvers: %w", err)
		}
	}
	return s, nil
}
