package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: "23505", ConstraintName: "appointments_doctor_id_appointment_date_appointment_time_key"})
	if !IsUniqueViolation(err) {
		t.Fatal("wrapped 23505 should classify as unique violation")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Fatal("plain error must not classify as unique violation")
	}
	if got := ConstraintName(err); got == "" {
		t.Fatal("expected constraint name on unique violation")
	}
}

func TestIsCheckViolation(t *testing.T) {
	if !IsCheckViolation(&pgconn.PgError{Code: "23514"}) {
		t.Fatal("23514 should classify as check violation")
	}
	if IsCheckViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("23505 must not classify as check violation")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("query: %w", pgx.ErrNoRows)) {
		t.Fatal("wrapped ErrNoRows should classify as not found")
	}
	if IsNotFound(errors.New("boom")) {
		t.Fatal("plain error must not classify as not found")
	}
}
