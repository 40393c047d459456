package events

import (
	"net/http"
	"time"
)

// HTTPStart is published by the GraphQL HTTP handler as soon as a request
// arrives, before the body is read. The publish context carries the request
// id assigned to the request.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is published once the response has been written. Duration spans
// the whole handler, including parsing and execution of every operation in a
// batched request.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
