package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDialect_Rebind(t *testing.T) {
	q := `SELECT id FROM users WHERE username = ? AND is_admin = ? LIMIT ?`

	if got := SQLite.Rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}
	want := `SELECT id FROM users WHERE username = $1 AND is_admin = $2 LIMIT $3`
	if got := Postgres.Rebind(q); got != want {
		t.Fatalf("postgres rebind: got %q, want %q", got, want)
	}
}

func TestParseDialect(t *testing.T) {
	cases := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"sqlite", SQLite, false},
		{" SQLite3 ", SQLite, false},
		{"postgres", Postgres, false},
		{"pgx", Postgres, false},
		{"mysql", "", true},
	}
	for _, tc := range cases {
		got, err := ParseDialect(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseDialect(%q) err=%v, wantErr=%v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("ParseDialect(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDialect_Names(t *testing.T) {
	if SQLite.DriverName() != "sqlite" || SQLite.GooseDialect() != "sqlite3" {
		t.Fatalf("unexpected sqlite names: %s %s", SQLite.DriverName(), SQLite.GooseDialect())
	}
	if Postgres.DriverName() != "pgx" || Postgres.GooseDialect() != "postgres" {
		t.Fatalf("unexpected postgres names: %s %s", Postgres.DriverName(), Postgres.GooseDialect())
	}
}

func TestIsUniqueViolation_Postgres(t *testing.T) {
	unique := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(unique) {
		t.Fatalf("expected unique violation for 23505")
	}
	fk := &pgconn.PgError{Code: "23503"}
	if IsUniqueViolation(fk) {
		t.Fatalf("foreign key violation reported as unique")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain error reported as unique")
	}
}
