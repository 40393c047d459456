package executable

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	directives "github.com/graphmend/graphmend/internal/directives"
	executor "github.com/graphmend/graphmend/internal/executor"
	language "github.com/graphmend/graphmend/internal/language"
	resolvers "github.com/graphmend/graphmend/internal/resolvers"
	schema "github.com/graphmend/graphmend/internal/schema"
)

const typeDefs = `
	directive @upper on FIELD_DEFINITION

	type Query {
		hello(name: String = "world"): String
		shout: String @upper
	}
`

func execute(t *testing.T, s *schema.Schema, query string) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return executor.New(s).ExecuteRequest(context.Background(), doc, "", nil, nil)
}

func TestBuild_EndToEnd(t *testing.T) {
	s, err := Build(Config{
		TypeDefs: typeDefs,
		Resolvers: resolvers.Map{
			"Query": {
				"hello": func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
					name, _ := args["name"].(string)
					return "hello " + name, nil
				},
				"shout": func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
					return "quiet", nil
				},
			},
		},
		DirectiveResolvers: directives.Map{
			"upper": func(ctx context.Context, next directives.Thunk, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
				v, err := next()
				if err != nil {
					return nil, err
				}
				return strings.ToUpper(v.(string)), nil
			},
		},
	})
	require.NoError(t, err)

	got := execute(t, s, `{ hello, shout }`)
	want := &executor.ExecutionResult{
		Data:   map[string]any{"hello": "hello world", "shout": "QUIET"},
		Errors: []executor.GraphQLError{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_InvalidSDL(t *testing.T) {
	_, err := Build(Config{TypeDefs: `type Query { broken: Missing }`})
	require.Error(t, err)
	require.Contains(t, err.Error(), "load schema")
}

func TestBuild_NoTypeDefs(t *testing.T) {
	_, err := Build(Config{})
	require.Error(t, err)
}

func TestBuild_BadResolverMap(t *testing.T) {
	_, err := Build(Config{
		TypeDefs:  `type Query { a: String }`,
		Resolvers: resolvers.Map{"Nope": {"x": nil}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bind resolvers")
}

func TestBuild_MultipleSources(t *testing.T) {
	s, err := Build(Config{
		Sources: []*language.Source{
			{Name: "a.graphql", Input: `type Query { a: String }`},
			{Name: "b.graphql", Input: `extend type Query { b: Int }`},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, s.Types["Query"].Field("a"))
	require.NotNil(t, s.Types["Query"].Field("b"))
}
