package models

import (
	"strings"
	"time"
)

type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in-progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusClosed     ComplaintStatus = "closed"
)

type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "low"
	PriorityMedium ComplaintPriority = "medium"
	PriorityHigh   ComplaintPriority = "high"
	PriorityUrgent ComplaintPriority = "urgent"
)

type ComplaintCategory string

const (
	CategoryInfrastructure ComplaintCategory = "infrastructure"
	CategorySafety         ComplaintCategory = "safety"
	CategoryEnvironment    ComplaintCategory = "environment"
	CategoryOther          ComplaintCategory = "other"
)

// VoiceComplaintDescription is stored for complaints captured over the phone.
const VoiceComplaintDescription = "Voice complaint recorded via IVR"

type Complaint struct {
	ID           string            `json:"id"`
	ComplaintID  string            `json:"complaintId"`
	PhoneNumber  string            `json:"phoneNumber"`
	RecordingURL string            `json:"recordingUrl"`
	Description  string            `json:"description"`
	Status       ComplaintStatus   `json:"status"`
	Priority     ComplaintPriority `json:"priority"`
	Category     ComplaintCategory `json:"category"`
	AssignedTo   string            `json:"assignedTo,omitempty"`
	Notes        []string          `json:"notes"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// PrepareCreate fills defaults before the first write. newID is only called
// when ComplaintID is empty.
func (c *Complaint) PrepareCreate(newID func() string) {
	if strings.TrimSpace(c.ComplaintID) == "" {
		c.ComplaintID = newID()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	if c.Category == "" {
		c.Category = CategoryOther
	}
	if c.Notes == nil {
		c.Notes = []string{}
	}
}

// Validate checks required fields and enum values.
func (c *Complaint) Validate() error {
	switch {
	case strings.TrimSpace(c.ComplaintID) == "":
		return fieldError("complaintId", "is required")
	case strings.TrimSpace(c.PhoneNumber) == "":
		return fieldError("phoneNumber", "is required")
	case strings.TrimSpace(c.RecordingURL) == "":
		return fieldError("recordingUrl", "is required")
	case !c.Status.Valid():
		return fieldError("status", "must be one of pending, in-progress, resolved, closed")
	case !c.Priority.Valid():
		return fieldError("priority", "must be one of low, medium, high, urgent")
	case !c.Category.Valid():
		return fieldError("category", "must be one of infrastructure, safety, environment, other")
	}
	return nil
}

func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Open reports whether the complaint still needs work.
func (s ComplaintStatus) Open() bool {
	return s == StatusPending || s == StatusInProgress
}

func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (c ComplaintCategory) Valid() bool {
	switch c {
	case CategoryInfrastructure, CategorySafety, CategoryEnvironment, CategoryOther:
		return true
	}
	return false
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Field + " " + e.Msg }

func fieldError(field, msg string) error { return &FieldError{Field: field, Msg: msg} }
