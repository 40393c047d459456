package executor

import "fmt"

// Path locates a field in the response tree: string elements are response
// names, int elements are list indices.
type Path []any

func (p Path) String() string {
	out := ""
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				out += "."
			}
			out += v
		case int:
			out += fmt.Sprintf("[%d]", v)
		}
	}
	return out
}

// GraphQLError is a located execution error.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string { return e.Message }

// ExecutionResult is the outcome of executing one operation. Data may be
// partially populated when Errors is non-empty.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
