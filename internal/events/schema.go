package events

import "time"

// SchemaHeal is emitted after a heal pass over a schema's type map.
type SchemaHeal struct {
	// Removed lists the names of the types pruned by the pass, sorted.
	Removed []string
	// TypeCount is the number of types remaining after the pass.
	TypeCount int
	Duration  time.Duration
}
