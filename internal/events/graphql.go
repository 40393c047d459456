package events

import "time"

// GraphQLStart is published after a request document parses, just before the
// selected operation executes. In a batched request one pair of
// GraphQLStart/GraphQLFinish events is published per entry.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is published when execution of the operation returns.
// Errors holds the located field errors of a partial result; an empty slice
// means the operation succeeded in full.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
