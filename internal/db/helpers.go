package db

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (23505). The ingestion pipeline maps this to a duplicate
// status when two concurrent uploads of identical content race past the
// dedup check.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// NewUUID returns a fresh random UUID as a pgtype value.
func NewUUID() pgtype.UUID {
	return PgUUID(uuid.New())
}

// PgUUID converts a google UUID into a pgtype value.
func PgUUID(u uuid.UUID) pgtype.UUID {
	var out pgtype.UUID
	copy(out.Bytes[:], u[:])
	out.Valid = true
	return out
}

// ParseUUID parses a string into a pgtype UUID.
func ParseUUID(s string) (pgtype.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return PgUUID(u), nil
}

// UUIDString renders a pgtype UUID in canonical form. Invalid (NULL)
// values render as the empty string.
func UUIDString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// TextOrNull returns a pgtype.Text that is NULL for the empty string.
func TextOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
