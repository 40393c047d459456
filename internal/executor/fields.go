package executor

import (
	language "github.com/graphmend/graphmend/internal/language"
	schema "github.com/graphmend/graphmend/internal/schema"
)

// collectedFieldMap preserves field order from the original query
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{index: make(map[string]int)}
}

func (cfm *collectedFieldMap) add(responseName string, field *language.Field) {
	if idx, exists := cfm.index[responseName]; exists {
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
		return
	}
	cfm.index[responseName] = len(cfm.fields)
	cfm.fields = append(cfm.fields, collectedField{
		ResponseName: responseName,
		Fields:       []*language.Field{field},
	})
}

func (cfm *collectedFieldMap) orderedFields() []collectedField {
	return cfm.fields
}

// collectFields groups the selection set's fields by response name, expanding
// fragments and honoring @skip/@include.
func (ex *execution) collectFields(objectType *schema.Type, selectionSet language.SelectionSet) *collectedFieldMap {
	grouped := newCollectedFieldMap()
	ex.collectFieldsImpl(objectType, selectionSet, grouped, make(map[string]bool))
	return grouped
}

func (ex *execution) collectFieldsImpl(objectType *schema.Type, selectionSet language.SelectionSet, grouped *collectedFieldMap, visitedFragments map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !ex.shouldIncludeNode(sel.Directives) {
				continue
			}
			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}
			grouped.add(responseName, sel)

		case *language.InlineFragment:
			if !ex.shouldIncludeNode(sel.Directives) {
				continue
			}
			if !ex.fragmentApplies(sel.TypeCondition, objectType) {
				continue
			}
			ex.collectFieldsImpl(objectType, sel.SelectionSet, grouped, visitedFragments)

		case *language.FragmentSpread:
			if !ex.shouldIncludeNode(sel.Directives) {
				continue
			}
			if visitedFragments[sel.Name] {
				continue
			}
			visitedFragments[sel.Name] = true

			fragmentDef := ex.document.Fragments.ForName(sel.Name)
			if fragmentDef == nil {
				continue
			}
			if !ex.fragmentApplies(fragmentDef.TypeCondition, objectType) {
				continue
			}
			if !ex.shouldIncludeNode(fragmentDef.Directives) {
				continue
			}
			ex.collectFieldsImpl(objectType, fragmentDef.SelectionSet, grouped, visitedFragments)
		}
	}
}

// fragmentApplies reports whether a fragment with the given type condition
// selects fields of objectType: the condition names the type itself, an
// interface it implements, or a union it belongs to.
func (ex *execution) fragmentApplies(condition string, objectType *schema.Type) bool {
	if condition == "" || condition == objectType.Name {
		return true
	}
	conditionType := ex.schema.Types[condition]
	if conditionType == nil || !conditionType.IsAbstract() {
		return false
	}
	for _, name := range conditionType.PossibleTypes {
		if name == objectType.Name {
			return true
		}
	}
	for _, name := range objectType.Interfaces {
		if name == condition {
			return true
		}
	}
	return false
}

// shouldIncludeNode checks @skip and @include on a selection node.
func (ex *execution) shouldIncludeNode(directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, ok := ex.directiveArgumentValue(skip, "if").(bool); ok && v {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if v, ok := ex.directiveArgumentValue(include, "if").(bool); ok && !v {
			return false
		}
	}
	return true
}

func (ex *execution) directiveArgumentValue(directive *language.Directive, argName string) any {
	arg := directive.Arguments.ForName(argName)
	if arg == nil {
		return nil
	}
	return valueFromAST(arg.Value, ex.variableValues)
}
