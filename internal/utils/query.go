package utils

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryInt safely parses an integer from query parameters.
// If missing or invalid, returns the provided default.
func QueryInt(q url.Values, key string, def int) int {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Clamp bounds a page size; out-of-range values fall back to def.
func Clamp(n, def, max int) int {
	if n <= 0 || n > max {
		return def
	}
	return n
}
