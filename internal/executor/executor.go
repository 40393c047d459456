package executor

import (
	"context"
	"fmt"
	"reflect"

	language "github.com/graphmend/graphmend/internal/language"
	schema "github.com/graphmend/graphmend/internal/schema"
)

// Executor executes query documents against one executable schema.
// It is stateless across requests and safe for concurrent use as long as the
// schema is not mutated concurrently.
type Executor struct {
	schema *schema.Schema
}

// New creates an Executor for the given schema.
func New(s *schema.Schema) *Executor { return &Executor{schema: s} }

// execution holds per-request state.
type execution struct {
	ctx            context.Context
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	errors         []GraphQLError
}

// ExecuteRequest runs one operation from document and returns its result.
// initialValue is the root source value passed to root-field resolvers.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation := getOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coerced, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	case language.Subscription:
		rootType = e.schema.GetSubscriptionType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	ex := &execution{
		ctx:            ctx,
		schema:         e.schema,
		document:       document,
		variableValues: coerced,
		errors:         []GraphQLError{},
	}
	data := ex.executeSelectionSet(rootType, operation.SelectionSet, initialValue, Path{})
	return &ExecutionResult{Data: data, Errors: ex.errors}
}

// executeSelectionSet executes every collected field of the selection set
// against objectValue. A nil return signals a Non-Null violation that the
// caller must propagate.
func (ex *execution) executeSelectionSet(objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) map[string]any {
	grouped := ex.collectFields(objectType, selectionSet)
	resultMap := make(map[string]any)

	for _, collected := range grouped.orderedFields() {
		responseName := collected.ResponseName
		fields := collected.Fields
		fieldPath := appendPath(path, responseName)

		fieldResult := ex.executeField(objectType, objectValue, fields, fieldPath)

		if fields[0].Name == "__typename" {
			resultMap[responseName] = fieldResult
			continue
		}

		fieldDef := objectType.Field(fields[0].Name)
		if fieldDef == nil {
			// Unknown field; the error was recorded in executeField.
			continue
		}

		if schema.IsNonNull(fieldDef.Type) && isNullish(fieldResult) {
			if len(path) > 0 {
				return nil
			}
			// Root level: keep going but write null.
			resultMap[responseName] = nil
			continue
		}

		if isNullish(fieldResult) {
			resultMap[responseName] = nil
		} else {
			resultMap[responseName] = fieldResult
		}
	}
	return resultMap
}

// executeField resolves and completes one field group.
func (ex *execution) executeField(objectType *schema.Type, objectValue any, fields []*language.Field, path Path) any {
	field := fields[0]

	if field.Name == "__typename" {
		return objectType.Name
	}

	fieldDef := objectType.Field(field.Name)
	if fieldDef == nil {
		ex.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", field.Name, objectType.Name), path)
		return nil
	}

	args := ex.coerceArgumentValues(fieldDef, field.Arguments, path)

	resolver := fieldDef.Resolver
	if resolver == nil {
		resolver = schema.DefaultResolver
	}
	info := schema.ResolveInfo{
		FieldName:  field.Name,
		ParentType: objectType.Name,
		ReturnType: fieldDef.Type,
		Schema:     ex.schema,
		Path:       path,
	}
	value, err := resolver(ex.ctx, objectValue, args, info)
	if err != nil {
		ex.addError(err.Error(), path)
		return nil
	}
	return ex.completeValue(fieldDef.Type, fields, value, path)
}

// completeValue completes a resolved value per the GraphQL spec.
func (ex *execution) completeValue(fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !ex.hasErrorAtPath(path) {
				ex.addError(fmt.Sprintf("Cannot return null for non-nullable field %s", path.String()), path)
			}
			return nil
		}
		completed := ex.completeValue(schema.Unwrap(fieldType), fields, result, path)
		if isNullish(completed) {
			// Error already recorded at the violating path; propagate only.
			return nil
		}
		return completed
	}

	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return ex.completeListValue(fieldType, fields, result, path)
	}

	namedType := schema.GetNamedType(fieldType)
	typeObj := ex.schema.Types[namedType]
	if typeObj == nil {
		ex.addError(fmt.Sprintf("Unknown type: %s", namedType), path)
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := serializeLeafValue(typeObj, result)
		if err != nil {
			ex.addError(err.Error(), path)
			return nil
		}
		return serialized
	case schema.TypeKindObject:
		return ex.completeObjectValue(typeObj, fields, result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return ex.completeAbstractValue(typeObj, fields, result, path)
	default:
		ex.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), path)
		return nil
	}
}

func (ex *execution) completeListValue(listType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice {
			ex.addError(fmt.Sprintf("Expected list value, got %T", result), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	for i, item := range items {
		v := ex.completeValue(inner, fields, item, appendPath(path, i))
		if schema.IsNonNull(inner) && isNullish(v) {
			// A Non-Null element violation nullifies the whole list value.
			return nil
		}
		completed[i] = v
	}
	return completed
}

func (ex *execution) completeObjectValue(objectType *schema.Type, fields []*language.Field, result any, path Path) any {
	return ex.executeSelectionSet(objectType, mergeSelectionSets(fields), result, path)
}

func (ex *execution) completeAbstractValue(abstractType *schema.Type, fields []*language.Field, result any, path Path) any {
	resolveType := abstractType.ResolveType
	if resolveType == nil {
		resolveType = schema.DefaultResolveType
	}
	typeName, err := resolveType(ex.ctx, result)
	if err != nil {
		ex.addError(err.Error(), path)
		return nil
	}
	if typeName == "" {
		ex.addError(fmt.Sprintf("Abstract type %s could not resolve a concrete type for the value", abstractType.Name), path)
		return nil
	}
	objectType := ex.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		ex.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstractType.Name, typeName), path)
		return nil
	}
	return ex.completeObjectValue(objectType, fields, result, path)
}

// serializeLeafValue serializes a scalar or enum value to a JSON-safe Go
// value. Custom scalar values pass through unchanged.
func serializeLeafValue(t *schema.Type, value any) (any, error) {
	if t.Kind == schema.TypeKindEnum {
		name := fmt.Sprint(value)
		for _, ev := range t.EnumValues {
			if ev.Name == name {
				return name, nil
			}
		}
		return nil, fmt.Errorf("value %v is not a member of enum %s", value, t.Name)
	}
	switch t.Name {
	case "Int":
		return coerceToInt(value)
	case "Float":
		return coerceToFloat(value)
	case "String":
		return coerceToString(value)
	case "Boolean":
		return coerceToBoolean(value)
	case "ID":
		return coerceToID(value)
	default:
		return value, nil
	}
}

func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		return document.Operations[0]
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

func (ex *execution) addError(message string, path Path) {
	ex.errors = append(ex.errors, GraphQLError{Message: message, Path: path})
}

// hasErrorAtPath reports whether an error with the given path already exists.
func (ex *execution) hasErrorAtPath(path Path) bool {
	for _, err := range ex.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

func appendPath(path Path, elem any) Path {
	out := make(Path, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
