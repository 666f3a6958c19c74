package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// parseTimestamp reads an optional RFC 3339 value, defaulting to now.
func parseTimestamp(field string, v *string) (time.Time, error) {
	if v == nil || *v == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return time.Time{}, invalid(field, "must be an RFC 3339 timestamp")
	}
	return t.UTC(), nil
}

// parseOptionalID reads an optional UUID string.
func parseOptionalID(field string, v *string) (*uuid.UUID, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		return nil, invalid(field, "must be a UUID")
	}
	return &id, nil
}

func parseID(field, v string) (uuid.UUID, error) {
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, invalid(field, "must be a UUID")
	}
	return id, nil
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func derefOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// checkCents rejects amounts finer than a cent; every money column stores two
// decimals, so such values would be rounded on write.
func checkCents(field string, v decimal.Decimal) error {
	if !v.Equal(v.Round(2)) {
		return invalid(field, "must have at most 2 decimal places")
	}
	return nil
}
