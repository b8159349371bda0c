package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsSerializationFailure(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	if !IsSerializationFailure(pgErr) {
		t.Error("expected 40001 to be a serialization failure")
	}

	// Detection must survive wrapping.
	wrapped := fmt.Errorf("reserve appointment: %w", pgErr)
	if !IsSerializationFailure(wrapped) {
		t.Error("expected wrapped 40001 to be detected")
	}

	if IsSerializationFailure(&pgconn.PgError{Code: "23505"}) {
		t.Error("23505 is not a serialization failure")
	}
	if IsSerializationFailure(errors.New("plain error")) {
		t.Error("plain errors are not serialization failures")
	}
	if IsSerializationFailure(nil) {
		t.Error("nil is not a serialization failure")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "appointment_queue_key"}
	if !IsUniqueViolation(pgErr) {
		t.Error("expected 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "40001"}) {
		t.Error("40001 is not a unique violation")
	}
	if IsUniqueViolation(errors.New("duplicate key")) {
		t.Error("plain errors are not unique violations")
	}
}
