package clean

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns that are structurally absent from the
// input after header normalization. It is fatal to the load.
type SchemaError struct {
	// Missing lists the canonical columns that were not found.
	Missing []string
	// Columns lists the headers that were found, in first-seen order.
	Columns []string
}

func (e *SchemaError) Error() string {
	if len(e.Columns) == 0 {
		return fmt.Sprintf("schema: missing required columns %s (input has no columns)", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("schema: missing required columns %s (found: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Columns, ", "))
}
