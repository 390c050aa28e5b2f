/*
 * Copyright 2025 payrail.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

func TestIsSqlError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   bool
		kind SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"no rows", sql.ErrNoRows, true, NoRowsErr},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), true, NoRowsErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true, DuplicateKeyErr},
		{"mysql not null", &mysql.MySQLError{Number: 1048, Message: "Column cannot be null"}, true, NotNullViolationErr},
		{"mysql no table", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, true, NoTableErr},
		{"mysql foreign key", &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, true, ForeignKeyViolationErr},
		{"mysql check", &mysql.MySQLError{Number: 3819, Message: "Check constraint violated"}, true, CheckConstraintViolationErr},
		{"mysql other", &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout"}, true, UnknownErr},
		{"pq duplicate", &pq.Error{Code: "23505"}, true, DuplicateKeyErr},
		{"pq not null", &pq.Error{Code: "23502"}, true, NotNullViolationErr},
		{"pq foreign key", &pq.Error{Code: "23503"}, true, ForeignKeyViolationErr},
		{"pq check", &pq.Error{Code: "23514"}, true, CheckConstraintViolationErr},
		{"pq no table", &pq.Error{Code: "42P01"}, true, NoTableErr},
		{"pq other", &pq.Error{Code: "40001"}, true, UnknownErr},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: widgets.name (2067)"), true, DuplicateKeyErr},
		{"sqlite not null", errors.New("constraint failed: NOT NULL constraint failed: widgets.name (1299)"), true, NotNullViolationErr},
		{"sqlite foreign key", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), true, ForeignKeyViolationErr},
		{"sqlite no table", errors.New("SQL logic error: no such table: widgets (1)"), true, NoTableErr},
		{"plain error", errors.New("connection refused"), false, UnknownErr},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is, kind := IsSqlError(tc.err)
			if is != tc.is || kind != tc.kind {
				t.Fatalf("IsSqlError(%v) = (%v, %d), want (%v, %d)", tc.err, is, kind, tc.is, tc.kind)
			}
		})
	}
}
