// Package handlers maps HTTP requests onto store reads and writes. The
// handlers validate identifiers and translate errors; all pipeline logic
// lives in the pipeline package.
package handlers

import (
	"fmt"
	"strconv"
)

// parseID parses a positive integer path identifier.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("identifier must be a positive integer")
	}
	return id, nil
}
