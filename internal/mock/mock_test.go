package mock

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	executor "github.com/graphmend/graphmend/internal/executor"
	language "github.com/graphmend/graphmend/internal/language"
	schema "github.com/graphmend/graphmend/internal/schema"
)

func serve(t *testing.T, sdl, query string) *executor.ExecutionResult {
	t.Helper()
	s, err := schema.BuildFromSDL(sdl)
	require.NoError(t, err)
	Attach(s)
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	res := executor.New(s).ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	return res
}

func TestAttach_ScalarMocks(t *testing.T) {
	res := serve(t, `
		type Query { s: String, i: Int, f: Float, id: ID, b: Boolean }
	`, `{ s, i, f, id, b }`)

	want := map[string]any{
		"s":  StringValue,
		"i":  IntValue,
		"f":  FloatValue,
		"id": IDValue,
		"b":  BoolValue,
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestAttach_ListsAndNonNull(t *testing.T) {
	res := serve(t, `
		type Query { names: [String!]!, nested: [[Int]] }
	`, `{ names, nested }`)

	want := map[string]any{
		"names": []any{StringValue, StringValue},
		"nested": []any{
			[]any{IntValue, IntValue},
			[]any{IntValue, IntValue},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestAttach_ObjectsRecurse(t *testing.T) {
	res := serve(t, `
		type Query { user: User }
		type User { name: String, friend: User }
	`, `{ user { name, friend { name } } }`)

	want := map[string]any{
		"user": map[string]any{
			"name":   StringValue,
			"friend": map[string]any{"name": StringValue},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestAttach_EnumAndCustomScalar(t *testing.T) {
	res := serve(t, `
		type Query { color: Color, when: Date }
		enum Color { RED GREEN }
		scalar Date
	`, `{ color, when }`)

	want := map[string]any{"color": "RED", "when": "Date"}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestAttach_AbstractTypes(t *testing.T) {
	res := serve(t, `
		type Query { pet: Pet }
		union Pet = Dog | Cat
		type Dog { bark: String }
		type Cat { meow: String }
	`, `{ pet { __typename ... on Dog { bark } } }`)

	want := map[string]any{
		"pet": map[string]any{"__typename": "Dog", "bark": StringValue},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestAttach_KeepsExistingResolvers(t *testing.T) {
	s, err := schema.BuildFromSDL(`type Query { a: String, b: String }`)
	require.NoError(t, err)
	s.Types["Query"].Field("a").SetResolver(func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return "real", nil
	})

	Attach(s)

	doc, err := language.ParseQuery(`{ a, b }`)
	require.NoError(t, err)
	res := executor.New(s).ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"a": "real", "b": StringValue}, res.Data)
}
