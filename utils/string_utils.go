package utils

import (
	"database/sql"
	"strings"
)

// NullStringToStringPtr converts a sql.NullString to a *string.
func NullStringToStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

// PointerToString renders a *string for logging, "<nil>" when unset.
func PointerToString(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

// EmptyToNil trims s and returns nil for an empty result, a pointer
// otherwise. CSV columns and optional JSON fields use it to map blanks to
// NULL.
func EmptyToNil(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
