package util

import (
	"strconv"
)

// MustParseUint returns 0 when s is not a valid unsigned integer.
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParseID parses a positive path id.
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
