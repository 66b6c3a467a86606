package sqlstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestConstraintViolationDetection(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: pgUniqueViolation})
	fk := &pgconn.PgError{Code: pgForeignKeyViolation}

	if !isUniqueViolation(unique) {
		t.Fatal("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(fk) {
		t.Fatal("23503 must not be treated as unique violation")
	}
	if !isForeignKeyViolation(fk) {
		t.Fatal("expected 23503 to be a foreign key violation")
	}
	if isForeignKeyViolation(errors.New("plain")) {
		t.Fatal("plain error must not be a constraint violation")
	}
}

func TestViolatedConstraint(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("insert review: %w", &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "reviews_user_id_fkey"})
	if got := violatedConstraint(err); got != "reviews_user_id_fkey" {
		t.Fatalf("unexpected constraint: %q", got)
	}
	if got := violatedConstraint(errors.New("plain")); got != "" {
		t.Fatalf("expected empty constraint, got %q", got)
	}
}
