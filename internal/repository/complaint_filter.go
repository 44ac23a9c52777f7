package repository

import "strings"

const (
	DefaultComplaintLimit = 50
	MaxComplaintLimit     = 200
)

type ComplaintFilter struct {
	Q        string // phone number or description
	Status   string
	Priority string
	Category string
	Limit    int
	Offset   int
}

// Normalize trims the filter values and bounds the page.
func (f ComplaintFilter) Normalize() ComplaintFilter {
	f.Q = strings.TrimSpace(f.Q)
	f.Status = strings.TrimSpace(f.Status)
	f.Priority = strings.TrimSpace(f.Priority)
	f.Category = strings.TrimSpace(f.Category)
	if f.Limit <= 0 || f.Limit > MaxComplaintLimit {
		f.Limit = DefaultComplaintLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
