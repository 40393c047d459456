package executor

import (
	"fmt"
	"strconv"
	"strings"

	language "github.com/graphmend/graphmend/internal/language"
	schema "github.com/graphmend/graphmend/internal/schema"
)

// coerceVariableValues coerces the request's variable values against the
// operation's variable definitions. Errors here stop execution.
func coerceVariableValues(
	s *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, error) {
	if variableValues == nil {
		variableValues = make(map[string]any)
	}
	coerced := make(map[string]any)
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		t := varDef.Type
		val, ok := variableValues[name]
		if !ok {
			if v2, ok2 := variableValues[strings.TrimPrefix(name, "$")]; ok2 {
				val = v2
				ok = true
			}
		}
		if !ok {
			if varDef.DefaultValue != nil {
				val = valueFromAST(varDef.DefaultValue, nil)
			} else if t.NonNull {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, t.String())
			} else {
				continue
			}
		}
		if val == nil && t.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, t.String())
		}
		cv, err := coerceValue(val, typeRefFromAST(t))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %v", name, t.String(), err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArgumentValues coerces the literal and variable arguments of one
// field use. Bad arguments record located errors and are omitted.
func (ex *execution) coerceArgumentValues(fieldDef *schema.Field, arguments language.ArgumentList, path Path) map[string]any {
	coerced := make(map[string]any)
	for _, arg := range arguments {
		argDef := fieldDef.Argument(arg.Name)
		if argDef == nil {
			continue
		}
		val := valueFromAST(arg.Value, ex.variableValues)
		cv, err := coerceValue(val, argDef.Type)
		if err != nil {
			ex.addError(fmt.Sprintf("argument '%s' cannot be coerced: %v", arg.Name, err), path)
			continue
		}
		coerced[arg.Name] = cv
	}
	for _, argDef := range fieldDef.Arguments {
		if _, ok := coerced[argDef.Name]; ok {
			continue
		}
		if argDef.DefaultValue != nil {
			coerced[argDef.Name] = argDef.DefaultValue
		} else if schema.IsNonNull(argDef.Type) {
			ex.addError(fmt.Sprintf("argument '%s' of required type was not provided", argDef.Name), path)
		}
	}
	return coerced
}

// valueFromAST converts an AST value to a Go value, substituting variables.
func valueFromAST(value *language.Value, variableValues map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		name := value.Raw
		if v, ok := variableValues[name]; ok {
			return v
		}
		if v, ok := variableValues[strings.TrimPrefix(name, "$")]; ok {
			return v
		}
		return nil
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return value.Raw
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromAST(c.Value, variableValues)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range value.Children {
			m[f.Name] = valueFromAST(f.Value, variableValues)
		}
		return m
	default:
		return nil
	}
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return schema.NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return schema.NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return schema.ListType(typeRefFromAST(t.Elem))
	}
	return nil
}

// coerceValue coerces a value to the given GraphQL type.
func coerceValue(value any, targetType *schema.TypeRef) (any, error) {
	if schema.IsNonNull(targetType) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceValue(value, schema.Unwrap(targetType))
	}
	if value == nil {
		return nil, nil
	}
	if schema.IsList(targetType) {
		return coerceListValue(value, targetType)
	}

	switch schema.GetNamedType(targetType) {
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
		// Custom scalars, enums, and input objects pass through.
		return value, nil
	}
}

func coerceListValue(value any, listType *schema.TypeRef) (any, error) {
	inner := schema.Unwrap(listType)
	if slice, ok := value.([]any); ok {
		coerced := make([]any, len(slice))
		for i, item := range slice {
			cv, err := coerceValue(item, inner)
			if err != nil {
				return nil, err
			}
			coerced[i] = cv
		}
		return coerced, nil
	}
	// A single value becomes a list of one.
	cv, err := coerceValue(value, inner)
	if err != nil {
		return nil, err
	}
	return []any{cv}, nil
}

func coerceToInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case float32:
		return int(v), nil
	case string:
		if iv, err := strconv.Atoi(v); err == nil {
			return iv, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to int", value, value)
}

func coerceToFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if fv, err := strconv.ParseFloat(v, 64); err == nil {
			return fv, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to float", value, value)
}

func coerceToString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return fmt.Sprintf("%v", value), nil
}

func coerceToBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to boolean", value, value)
}

func coerceToID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return fmt.Sprintf("%v", value), nil
	}
}
