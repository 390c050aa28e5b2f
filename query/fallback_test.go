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

package query_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/payrail/storage/query"
)

// noReturningDialect masks the RETURNING features so the primitives take the
// multi-statement fallbacks that MySQL would take.
type noReturningDialect struct {
	*sqlitedialect.Dialect
}

func (d *noReturningDialect) Features() feature.Feature {
	return d.Dialect.Features() &^ (feature.Returning | feature.InsertReturning)
}

func testDBNoReturning(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, &noReturningDialect{sqlitedialect.New()})
	if _, err := db.NewCreateTable().Model((*widget)(nil)).Exec(context.Background()); err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFallbackInsertSetsGeneratedKey(t *testing.T) {
	db := testDBNoReturning(t)

	row := mustInsert(t, db, "alpha", 1)
	if row.ID == 0 {
		t.Fatal("expected key from the engine's last-insert-id")
	}
}

func TestFallbackUpdateWithResultsPredicateColumn(t *testing.T) {
	db := testDBNoReturning(t)
	ctx := context.Background()

	mustInsert(t, db, "alpha", 1)
	mustInsert(t, db, "beta", 1)
	mustInsert(t, db, "gamma", 2)

	// the changeset rewrites the predicate column; the fallback must still
	// return the updated rows
	rows, err := query.UpdateWithResults[widget](ctx, db, query.Eq("rank", 1), query.NewChangeset().Set("rank", 9))
	if err != nil {
		t.Fatalf("update with results: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 updated rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Rank != 9 {
			t.Fatalf("expected post-update rank 9, got %d", row.Rank)
		}
	}

	rows, err = query.UpdateWithResults[widget](ctx, db, query.Eq("rank", 404), query.NewChangeset().Set("rank", 1))
	if err != nil {
		t.Fatalf("empty-match update must not fail: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestFallbackUpdateByKey(t *testing.T) {
	db := testDBNoReturning(t)
	ctx := context.Background()

	inserted := mustInsert(t, db, "alpha", 3)

	// assigning the current values reports zero affected rows on MySQL;
	// the existing key must still resolve to the row, not to not-found
	row, err := query.UpdateByKey[widget](ctx, db, inserted.ID, query.NewChangeset().Set("rank", 3))
	if err != nil {
		t.Fatalf("value-identical update must not fail: %v", err)
	}
	if row.ID != inserted.ID || row.Rank != 3 {
		t.Fatalf("unexpected row %+v", row)
	}

	row, err = query.UpdateByKey[widget](ctx, db, inserted.ID, query.NewChangeset().Set("rank", 5))
	if err != nil {
		t.Fatalf("update by key: %v", err)
	}
	if row.Rank != 5 {
		t.Fatalf("expected rank 5, got %d", row.Rank)
	}

	if _, err := query.UpdateByKey[widget](ctx, db, int64(404), query.NewChangeset().Set("rank", 1)); !errors.Is(err, query.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown key, got %v", err)
	}
}

func TestFallbackDeleteOneWithResult(t *testing.T) {
	db := testDBNoReturning(t)
	ctx := context.Background()

	inserted := mustInsert(t, db, "alpha", 1)

	row, err := query.DeleteOneWithResult[widget](ctx, db, query.Eq("name", "alpha"))
	if err != nil {
		t.Fatalf("delete one with result: %v", err)
	}
	if row.ID != inserted.ID {
		t.Fatalf("expected deleted row %d, got %d", inserted.ID, row.ID)
	}

	if _, err := query.DeleteOneWithResult[widget](ctx, db, query.Eq("name", "alpha")); !errors.Is(err, query.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
