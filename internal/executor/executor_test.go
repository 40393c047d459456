package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/graphmend/graphmend/internal/language"
	schema "github.com/graphmend/graphmend/internal/schema"
)

func mustParseQuery(t *testing.T, query string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return doc
}

func buildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(sdl)
	require.NoError(t, err)
	return s
}

func value(v any) schema.Resolver {
	return func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return v, nil
	}
}

func failure(err error) schema.Resolver {
	return func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return nil, err
	}
}

func bind(t *testing.T, s *schema.Schema, typeName, fieldName string, r schema.Resolver) {
	t.Helper()
	f := s.Types[typeName].Field(fieldName)
	require.NotNil(t, f)
	f.SetResolver(r)
}

func run(t *testing.T, s *schema.Schema, query string) *ExecutionResult {
	t.Helper()
	return New(s).ExecuteRequest(context.Background(), mustParseQuery(t, query), "", nil, nil)
}

func assertResult(t *testing.T, want, got *ExecutionResult) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_Basic(t *testing.T) {
	s := buildSchema(t, `type Query { a: String, b: Int }`)
	bind(t, s, "Query", "a", value("hello"))
	bind(t, s, "Query", "b", value(7))

	got := run(t, s, `{ a, b }`)
	assertResult(t, &ExecutionResult{
		Data:   map[string]any{"a": "hello", "b": 7},
		Errors: []GraphQLError{},
	}, got)
}

func TestExecute_Alias(t *testing.T) {
	s := buildSchema(t, `type Query { a: String }`)
	bind(t, s, "Query", "a", value("v"))

	got := run(t, s, `{ first: a, second: a }`)
	assertResult(t, &ExecutionResult{
		Data:   map[string]any{"first": "v", "second": "v"},
		Errors: []GraphQLError{},
	}, got)
}

func TestExecute_DefaultResolver(t *testing.T) {
	s := buildSchema(t, `
		type Query { user: User }
		type User { name: String, age: Int }
	`)
	bind(t, s, "Query", "user", value(map[string]any{"name": "ada", "age": 36}))

	got := run(t, s, `{ user { name, age } }`)
	assertResult(t, &ExecutionResult{
		Data:   map[string]any{"user": map[string]any{"name": "ada", "age": 36}},
		Errors: []GraphQLError{},
	}, got)
}

func TestExecute_StructSource(t *testing.T) {
	type user struct {
		Name string
		Age  int
	}
	s := buildSchema(t, `
		type Query { user: User }
		type User { name: String, age: Int }
	`)
	bind(t, s, "Query", "user", value(user{Name: "ada", Age: 36}))

	got := run(t, s, `{ user { name, age } }`)
	assertResult(t, &ExecutionResult{
		Data:   map[string]any{"user": map[string]any{"name": "ada", "age": 36}},
		Errors: []GraphQLError{},
	}, got)
}

func TestExecute_ArgumentsAndVariables(t *testing.T) {
	s := buildSchema(t, `type Query { greet(name: String!, excited: Boolean = false): String }`)
	bind(t, s, "Query", "greet", func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		out := "hi " + args["name"].(string)
		if args["excited"].(bool) {
			out += "!"
		}
		return out, nil
	})

	t.Run("literals", func(t *testing.T) {
		got := run(t, s, `{ greet(name: "ada", excited: true) }`)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"greet": "hi ada!"},
			Errors: []GraphQLError{},
		}, got)
	})

	t.Run("variables", func(t *testing.T) {
		doc := mustParseQuery(t, `query Q($n: String!) { greet(name: $n) }`)
		got := New(s).ExecuteRequest(context.Background(), doc, "Q", map[string]any{"n": "bob"}, nil)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"greet": "hi bob"},
			Errors: []GraphQLError{},
		}, got)
	})

	t.Run("missing required variable", func(t *testing.T) {
		doc := mustParseQuery(t, `query Q($n: String!) { greet(name: $n) }`)
		got := New(s).ExecuteRequest(context.Background(), doc, "Q", nil, nil)
		require.Len(t, got.Errors, 1)
		require.Contains(t, got.Errors[0].Message, "$n")
	})
}

func TestExecute_Lists(t *testing.T) {
	s := buildSchema(t, `
		type Query { names: [String], nums: [Int!] }
	`)
	bind(t, s, "Query", "names", value([]any{"a", nil, "c"}))
	bind(t, s, "Query", "nums", value([]int{1, 2, 3}))

	got := run(t, s, `{ names, nums }`)
	assertResult(t, &ExecutionResult{
		Data: map[string]any{
			"names": []any{"a", nil, "c"},
			"nums":  []any{1, 2, 3},
		},
		Errors: []GraphQLError{},
	}, got)
}

func TestExecute_ErrorsAndPaths(t *testing.T) {
	t.Run("nullable field error", func(t *testing.T) {
		s := buildSchema(t, `type Query { a: String }`)
		bind(t, s, "Query", "a", failure(fmt.Errorf("boom")))

		got := run(t, s, `{ a }`)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"a": nil},
			Errors: []GraphQLError{{Message: "boom", Path: Path{"a"}}},
		}, got)
	})

	t.Run("nested path", func(t *testing.T) {
		s := buildSchema(t, `
			type Query { obj: Obj }
			type Obj { a: String }
		`)
		bind(t, s, "Query", "obj", value(map[string]any{}))
		bind(t, s, "Obj", "a", failure(fmt.Errorf("boom")))

		got := run(t, s, `{ obj { a } }`)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"obj": map[string]any{"a": nil}},
			Errors: []GraphQLError{{Message: "boom", Path: Path{"obj", "a"}}},
		}, got)
	})

	t.Run("list index in path", func(t *testing.T) {
		s := buildSchema(t, `
			type Query { objs: [Obj] }
			type Obj { a: String }
		`)
		bind(t, s, "Query", "objs", value([]any{map[string]any{"i": 0}, map[string]any{"i": 1}}))
		bind(t, s, "Obj", "a", func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
			if source.(map[string]any)["i"].(int) == 1 {
				return nil, fmt.Errorf("boom")
			}
			return "ok", nil
		})

		got := run(t, s, `{ objs { a } }`)
		assertResult(t, &ExecutionResult{
			Data: map[string]any{"objs": []any{
				map[string]any{"a": "ok"},
				map[string]any{"a": nil},
			}},
			Errors: []GraphQLError{{Message: "boom", Path: Path{"objs", 1, "a"}}},
		}, got)
	})

	t.Run("partial success", func(t *testing.T) {
		s := buildSchema(t, `type Query { good: String, bad: String }`)
		bind(t, s, "Query", "good", value("yes"))
		bind(t, s, "Query", "bad", failure(fmt.Errorf("no")))

		got := run(t, s, `{ good, bad }`)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"good": "yes", "bad": nil},
			Errors: []GraphQLError{{Message: "no", Path: Path{"bad"}}},
		}, got)
	})
}

func TestExecute_NonNullPropagation(t *testing.T) {
	s := buildSchema(t, `
		type Query { obj: Obj }
		type Obj { a: String! }
	`)
	bind(t, s, "Query", "obj", value(map[string]any{}))
	bind(t, s, "Obj", "a", failure(fmt.Errorf("boom")))

	got := run(t, s, `{ obj { a } }`)
	assertResult(t, &ExecutionResult{
		Data:   map[string]any{"obj": nil},
		Errors: []GraphQLError{{Message: "boom", Path: Path{"obj", "a"}}},
	}, got)
}

func TestExecute_Fragments(t *testing.T) {
	sdl := `
		type Query { node: Node }
		interface Node { id: ID! }
		type User implements Node { id: ID!, name: String }
		type Post implements Node { id: ID!, title: String }
	`

	t.Run("named fragment on concrete type", func(t *testing.T) {
		s := buildSchema(t, sdl)
		bind(t, s, "Query", "node", value(map[string]any{"__typename": "User", "id": "1", "name": "ada"}))

		got := run(t, s, `
			{ node { id ...UserBits } }
			fragment UserBits on User { name }
		`)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"node": map[string]any{"id": "1", "name": "ada"}},
			Errors: []GraphQLError{},
		}, got)
	})

	t.Run("inline fragment skipped on other type", func(t *testing.T) {
		s := buildSchema(t, sdl)
		bind(t, s, "Query", "node", value(map[string]any{"__typename": "Post", "id": "2", "title": "t"}))

		got := run(t, s, `{ node { id ... on User { name } ... on Post { title } } }`)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"node": map[string]any{"id": "2", "title": "t"}},
			Errors: []GraphQLError{},
		}, got)
	})

	t.Run("fragment with interface condition on object", func(t *testing.T) {
		s := buildSchema(t, sdl)
		bind(t, s, "Query", "node", value(map[string]any{"__typename": "User", "id": "3", "name": "eve"}))

		got := run(t, s, `{ node { ... on Node { id } ... on User { name } } }`)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"node": map[string]any{"id": "3", "name": "eve"}},
			Errors: []GraphQLError{},
		}, got)
	})
}

func TestExecute_SkipInclude(t *testing.T) {
	s := buildSchema(t, `type Query { a: String, b: String }`)
	bind(t, s, "Query", "a", value("A"))
	bind(t, s, "Query", "b", value("B"))

	got := run(t, s, `{ a @skip(if: true), b @include(if: true) }`)
	assertResult(t, &ExecutionResult{
		Data:   map[string]any{"b": "B"},
		Errors: []GraphQLError{},
	}, got)
}

func TestExecute_Typename(t *testing.T) {
	s := buildSchema(t, `type Query { a: String }`)
	bind(t, s, "Query", "a", value("x"))

	got := run(t, s, `{ __typename, a }`)
	assertResult(t, &ExecutionResult{
		Data:   map[string]any{"__typename": "Query", "a": "x"},
		Errors: []GraphQLError{},
	}, got)
}

func TestExecute_AbstractResolution(t *testing.T) {
	sdl := `
		type Query { pet: Pet }
		union Pet = Dog | Cat
		type Dog { bark: String }
		type Cat { meow: String }
	`

	t.Run("via __typename", func(t *testing.T) {
		s := buildSchema(t, sdl)
		bind(t, s, "Query", "pet", value(map[string]any{"__typename": "Dog", "bark": "woof"}))

		got := run(t, s, `{ pet { ... on Dog { bark } ... on Cat { meow } } }`)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"pet": map[string]any{"bark": "woof"}},
			Errors: []GraphQLError{},
		}, got)
	})

	t.Run("via ResolveType hook", func(t *testing.T) {
		s := buildSchema(t, sdl)
		s.Types["Pet"].SetResolveType(func(ctx context.Context, v any) (string, error) {
			return "Cat", nil
		})
		bind(t, s, "Query", "pet", value(map[string]any{"meow": "mew"}))

		got := run(t, s, `{ pet { ... on Cat { meow } } }`)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"pet": map[string]any{"meow": "mew"}},
			Errors: []GraphQLError{},
		}, got)
	})

	t.Run("unresolvable value errors", func(t *testing.T) {
		s := buildSchema(t, sdl)
		bind(t, s, "Query", "pet", value(map[string]any{"bark": "woof"}))

		got := run(t, s, `{ pet { ... on Dog { bark } } }`)
		require.Len(t, got.Errors, 1)
		require.Equal(t, Path{"pet"}, got.Errors[0].Path)
	})
}

func TestExecute_Mutation(t *testing.T) {
	s := buildSchema(t, `
		type Query { a: String }
		type Mutation { bump: Int }
	`)
	n := 0
	bind(t, s, "Mutation", "bump", func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		n++
		return n, nil
	})

	got := run(t, s, `mutation { bump }`)
	assertResult(t, &ExecutionResult{
		Data:   map[string]any{"bump": 1},
		Errors: []GraphQLError{},
	}, got)
}

func TestExecute_OperationSelection(t *testing.T) {
	s := buildSchema(t, `type Query { a: String }`)
	bind(t, s, "Query", "a", value("x"))
	doc := mustParseQuery(t, `query One { a } query Two { a }`)

	t.Run("by name", func(t *testing.T) {
		got := New(s).ExecuteRequest(context.Background(), doc, "Two", nil, nil)
		require.Empty(t, got.Errors)
	})

	t.Run("ambiguous without name", func(t *testing.T) {
		got := New(s).ExecuteRequest(context.Background(), doc, "", nil, nil)
		require.Len(t, got.Errors, 1)
	})
}

func TestExecute_EnumSerialization(t *testing.T) {
	s := buildSchema(t, `
		type Query { color: Color }
		enum Color { RED GREEN }
	`)

	t.Run("member value", func(t *testing.T) {
		bind(t, s, "Query", "color", value("RED"))
		got := run(t, s, `{ color }`)
		assertResult(t, &ExecutionResult{
			Data:   map[string]any{"color": "RED"},
			Errors: []GraphQLError{},
		}, got)
	})

	t.Run("non-member errors", func(t *testing.T) {
		bind(t, s, "Query", "color", value("BLUE"))
		got := run(t, s, `{ color }`)
		require.Len(t, got.Errors, 1)
		require.Equal(t, map[string]any{"color": nil}, got.Data)
	})
}
