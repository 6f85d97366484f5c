package controllers

import (
	"strconv"
)

// ParseUintParam parses a path parameter like :clothingId.
func ParseUintParam(value string) (uint, error) {
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}
