package introspection

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	executor "github.com/graphmend/graphmend/internal/executor"
	language "github.com/graphmend/graphmend/internal/language"
	schema "github.com/graphmend/graphmend/internal/schema"
)

const sdl = `
	type Query {
		user: User
		old: String @deprecated(reason: "use user")
	}
	type User implements Node {
		id: ID!
		name: String
	}
	interface Node { id: ID! }
	enum Color { RED GREEN }
	input Filter { term: String = "all" }
`

func query(t *testing.T, s *schema.Schema, q string) map[string]any {
	t.Helper()
	doc, err := language.ParseQuery(q)
	require.NoError(t, err)
	res := executor.New(s).ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	return res.Data.(map[string]any)
}

func extend(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(sdl)
	require.NoError(t, err)
	return Extend(s)
}

func TestExtend_SchemaEntryPoint(t *testing.T) {
	s := extend(t)

	data := query(t, s, `{ __schema { queryType { name kind } } }`)
	want := map[string]any{
		"__schema": map[string]any{
			"queryType": map[string]any{"name": "Query", "kind": "OBJECT"},
		},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestExtend_TypeEntryPoint(t *testing.T) {
	s := extend(t)

	t.Run("object type", func(t *testing.T) {
		data := query(t, s, `{ __type(name: "User") {
			name kind
			fields { name type { kind name ofType { name } } }
			interfaces { name }
		} }`)
		want := map[string]any{
			"__type": map[string]any{
				"name": "User",
				"kind": "OBJECT",
				"fields": []any{
					map[string]any{"name": "id", "type": map[string]any{
						"kind": "NON_NULL", "name": nil, "ofType": map[string]any{"name": "ID"},
					}},
					map[string]any{"name": "name", "type": map[string]any{
						"kind": "SCALAR", "name": "String", "ofType": nil,
					}},
				},
				"interfaces": []any{map[string]any{"name": "Node"}},
			},
		}
		if diff := cmp.Diff(want, data); diff != "" {
			t.Fatalf("(-want +got):\n%s", diff)
		}
	})

	t.Run("enum values", func(t *testing.T) {
		data := query(t, s, `{ __type(name: "Color") { enumValues { name } } }`)
		want := map[string]any{
			"__type": map[string]any{
				"enumValues": []any{
					map[string]any{"name": "RED"},
					map[string]any{"name": "GREEN"},
				},
			},
		}
		if diff := cmp.Diff(want, data); diff != "" {
			t.Fatalf("(-want +got):\n%s", diff)
		}
	})

	t.Run("input fields with defaults", func(t *testing.T) {
		data := query(t, s, `{ __type(name: "Filter") { inputFields { name defaultValue } } }`)
		want := map[string]any{
			"__type": map[string]any{
				"inputFields": []any{
					map[string]any{"name": "term", "defaultValue": `"all"`},
				},
			},
		}
		if diff := cmp.Diff(want, data); diff != "" {
			t.Fatalf("(-want +got):\n%s", diff)
		}
	})

	t.Run("unknown type is null", func(t *testing.T) {
		data := query(t, s, `{ __type(name: "Nope") { name } }`)
		require.Equal(t, map[string]any{"__type": nil}, data)
	})
}

func TestExtend_DeprecationFiltering(t *testing.T) {
	s := extend(t)

	data := query(t, s, `{ __type(name: "Query") { fields { name } } }`)
	fields := data["__type"].(map[string]any)["fields"].([]any)
	for _, f := range fields {
		require.NotEqual(t, "old", f.(map[string]any)["name"])
	}

	data = query(t, s, `{ __type(name: "Query") { fields(includeDeprecated: true) { name isDeprecated deprecationReason } } }`)
	fields = data["__type"].(map[string]any)["fields"].([]any)
	found := false
	for _, f := range fields {
		fm := f.(map[string]any)
		if fm["name"] == "old" {
			found = true
			require.Equal(t, true, fm["isDeprecated"])
			require.Equal(t, "use user", fm["deprecationReason"])
		}
	}
	require.True(t, found)
}

func TestExtend_PossibleTypes(t *testing.T) {
	s := extend(t)

	data := query(t, s, `{ __type(name: "Node") { possibleTypes { name } } }`)
	want := map[string]any{
		"__type": map[string]any{
			"possibleTypes": []any{map[string]any{"name": "User"}},
		},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestExtend_Directives(t *testing.T) {
	s := extend(t)

	data := query(t, s, `{ __schema { directives { name } } }`)
	names := map[string]bool{}
	for _, d := range data["__schema"].(map[string]any)["directives"].([]any) {
		names[d.(map[string]any)["name"].(string)] = true
	}
	require.True(t, names["skip"])
	require.True(t, names["include"])
	require.True(t, names["deprecated"])
}

func TestExtend_DoesNotMutateOriginal(t *testing.T) {
	s, err := schema.BuildFromSDL(sdl)
	require.NoError(t, err)
	before := len(s.GetQueryType().Fields)

	Extend(s)

	require.Len(t, s.GetQueryType().Fields, before)
	require.Nil(t, s.GetQueryType().Field("__schema"))
}
