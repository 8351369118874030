package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrUnauthorized is returned when an operation requires an
	// authenticated caller and none was resolved.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrNotFound is returned when a referenced entity or membership
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller is not the owner of the
	// entity being mutated.
	ErrForbidden = errors.New("only the author can modify this recipe")

	// ErrSelfFollow is returned when a user attempts to subscribe to
	// themselves.
	ErrSelfFollow = errors.New("subscribing to yourself is not allowed")
)

// ConflictError is returned when a uniqueness constraint would be violated,
// e.g. favoriting a recipe that is already favorited.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ValidationError carries itemized per-field messages. All violations are
// collected before any write happens, so the caller sees the full list.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return strings.Join(parts, "; ")
}

// isUniqueViolation reports whether err is a uniqueness-constraint error from
// the database. Concurrent inserts of the same pair race at the storage
// layer; the loser lands here and is surfaced as a conflict.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	// sqlite (tests) reports unique violations as a plain error string
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
