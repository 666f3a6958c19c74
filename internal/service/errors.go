package service

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors mapped to HTTP statuses by the handler layer.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrAlreadyReversed    = errors.New("transaction already reversed")
	ErrReversalOfReversal = errors.New("a reversal cannot be reversed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user not found or inactive")
)

// ValidationError carries field-level messages. Nothing is written when one
// is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// notFound translates gorm's not-found into ErrNotFound and passes
// everything else through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
