package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsConflict(t *testing.T) {
	t.Run("matches unique violation", func(t *testing.T) {
		err := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"picks_user_week_key\""}
		if !isConflict(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("matches serialization failure", func(t *testing.T) {
		err := &pq.Error{Code: "40001", Message: "could not serialize access due to concurrent update"}
		if !isConflict(err) {
			t.Fatalf("expected true for serialization failure")
		}
	})

	t.Run("matches wrapped pq error", func(t *testing.T) {
		err := fmt.Errorf("upsert pick: %w", &pq.Error{Code: "23505"})
		if !isConflict(err) {
			t.Fatalf("expected true for wrapped unique violation")
		}
	})

	t.Run("ignores other pq codes", func(t *testing.T) {
		err := &pq.Error{Code: "23503", Message: "foreign key violation"}
		if isConflict(err) {
			t.Fatalf("expected false for foreign key violation")
		}
	})

	t.Run("ignores non pq errors", func(t *testing.T) {
		if isConflict(errors.New("connection reset")) {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestNullInt64ToIntPtr(t *testing.T) {
	if got := nullInt64ToIntPtr(sql.NullInt64{Int64: 24, Valid: true}); got == nil || *got != 24 {
		t.Fatalf("expected 24, got %v", got)
	}
	if got := nullInt64ToIntPtr(sql.NullInt64{}); got != nil {
		t.Fatalf("expected nil for null value, got %v", got)
	}
}
