package sqlrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "postgres unique violation",
			err:  &pgconn.PgError{Code: pgUniqueViolationErrCode},
			want: true,
		},
		{
			name: "wrapped postgres unique violation",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolationErrCode}),
			want: true,
		},
		{
			name: "other postgres error",
			err:  &pgconn.PgError{Code: pgForeignKeyViolationErrCode},
			want: false,
		},
		{
			name: "sqlite unique violation",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
			want: true,
		},
		{
			name: "other sqlite constraint",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey},
			want: false,
		},
		{
			name: "unknown error",
			err:  errors.New("unknown error"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolationError(tt.err))
		})
	}
}

func TestIsForeignKeyViolationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "postgres foreign key violation",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgForeignKeyViolationErrCode}),
			want: true,
		},
		{
			name: "postgres unique violation",
			err:  &pgconn.PgError{Code: pgUniqueViolationErrCode},
			want: false,
		},
		{
			name: "sqlite foreign key violation",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey},
			want: true,
		},
		{
			name: "sqlite unique violation",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
			want: false,
		},
		{
			name: "unknown error",
			err:  errors.New("unknown error"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isForeignKeyViolationError(tt.err))
		})
	}
}
