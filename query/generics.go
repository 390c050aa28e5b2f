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

package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"

	"github.com/payrail/storage/database"
)

// defaultFilterLimit caps FilterOrder result sets when the caller does not
// request an explicit limit.
const defaultFilterLimit = 100

func logQuery(q fmt.Stringer) {
	database.GetLogger().Debug("query", "sql", q.String())
}

func classify(err error) error {
	if is, kind := database.IsSqlError(err); is && kind == database.DuplicateKeyErr {
		return ErrUniqueViolation
	}
	return ErrOthers
}

// Insert builds an INSERT for the payload's table, executes it, and returns
// the inserted row with engine-generated columns included. A uniqueness
// violation maps to ErrUniqueViolation, everything else to ErrOthers.
func Insert[T any](ctx context.Context, conn bun.IDB, payload *T) (*T, error) {
	q := conn.NewInsert().Model(payload)
	if conn.Dialect().Features().Has(feature.InsertReturning) {
		q = q.Returning("*")
	}
	logQuery(q)

	if _, err := q.Exec(ctx); err != nil {
		return nil, NewError(classify(err), err, fmt.Sprintf("Error while inserting %+v", payload))
	}
	return payload, nil
}

// Update builds an UPDATE restricted by predicate, applying values, and
// returns the number of affected rows. Zero is a valid count, not an error.
// An empty changeset returns ErrNoFieldsToUpdate; engine failures map to
// ErrOthers.
func Update[T any](ctx context.Context, conn bun.IDB, predicate Predicate, values *Changeset) (int64, error) {
	if values.Empty() {
		return 0, NewError(ErrNoFieldsToUpdate, nil, "Error while updating")
	}

	expr, args := predicate.Conditions()
	q := values.apply(conn.NewUpdate().Model((*T)(nil))).Where(expr, args...)
	logQuery(q)

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, NewError(ErrOthers, err, "Error while updating "+values.String())
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, NewError(ErrOthers, err, "Error while updating "+values.String())
	}
	return count, nil
}

// UpdateWithResults behaves like Update but additionally returns the updated
// rows. Engines with a RETURNING clause do this in one statement. Engines
// without one get a multi-statement fallback: the matching primary keys are
// captured first, then updated and re-read by key, so the result stays correct
// even when the changeset rewrites a predicate column. Callers needing the
// fallback to be atomic must pass a transactional connection.
func UpdateWithResults[T any](ctx context.Context, conn bun.IDB, predicate Predicate, values *Changeset) ([]T, error) {
	if values.Empty() {
		return nil, NewError(ErrNoFieldsToUpdate, nil, "Error while updating")
	}

	expr, args := predicate.Conditions()
	if !conn.Dialect().Features().Has(feature.Returning) {
		op := "Error while updating " + values.String()
		column, err := pkColumn[T](conn)
		if err != nil {
			return nil, err
		}

		var targets []T
		sq := conn.NewSelect().Model(&targets).Column(column).Where(expr, args...)
		logQuery(sq)
		if err := sq.Scan(ctx); err != nil {
			return nil, NewError(ErrOthers, err, op)
		}
		if len(targets) == 0 {
			return []T{}, nil
		}
		keys, err := pkValues(conn, targets)
		if err != nil {
			return nil, err
		}

		uq := values.apply(conn.NewUpdate().Model((*T)(nil))).
			Where("? IN (?)", bun.Ident(column), bun.In(keys))
		logQuery(uq)
		if _, err := uq.Exec(ctx); err != nil {
			return nil, NewError(ErrOthers, err, op)
		}

		var rows []T
		q := conn.NewSelect().Model(&rows).Where("? IN (?)", bun.Ident(column), bun.In(keys))
		logQuery(q)
		if err := q.Scan(ctx); err != nil {
			return nil, NewError(ErrOthers, err, op)
		}
		return rows, nil
	}

	var rows []T
	q := values.apply(conn.NewUpdate().Model((*T)(nil))).Where(expr, args...).Returning("*")
	logQuery(q)
	if _, err := q.Exec(ctx, &rows); err != nil {
		return nil, NewError(ErrOthers, err, "Error while updating "+values.String())
	}
	return rows, nil
}

// UpdateByKey updates the single row identified by the primary key and
// returns it. An empty changeset is a degenerate statement ("no columns to
// set"), so the primitive falls back to a plain key lookup and returns the
// unmodified current row instead of failing. A key that matches nothing maps
// to ErrNotFound, everything else to ErrOthers.
func UpdateByKey[T any](ctx context.Context, conn bun.IDB, key interface{}, values *Changeset) (*T, error) {
	if values.Empty() {
		return findByKeyCore[T](ctx, conn, key)
	}

	column, err := pkColumn[T](conn)
	if err != nil {
		return nil, err
	}
	op := fmt.Sprintf("Error while updating by key %v", key)

	if !conn.Dialect().Features().Has(feature.Returning) {
		q := values.apply(conn.NewUpdate().Model((*T)(nil))).Where("? = ?", bun.Ident(column), key)
		logQuery(q)
		res, err := q.Exec(ctx)
		if err != nil {
			return nil, NewError(ErrOthers, err, op)
		}
		if count, err := res.RowsAffected(); err != nil {
			return nil, NewError(ErrOthers, err, op)
		} else if count == 0 {
			// MySQL also reports zero affected rows when the assigned values
			// equal the current row, so only a lookup separates "row exists
			// unchanged" from "no matching row".
			row, err := findByKeyCore[T](ctx, conn, key)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, NewError(ErrNotFound, nil, op)
				}
				return nil, err
			}
			return row, nil
		}
		return findByKeyCore[T](ctx, conn, key)
	}

	var row T
	q := values.apply(conn.NewUpdate().Model((*T)(nil))).
		Where("? = ?", bun.Ident(column), key).
		Returning("*")
	logQuery(q)
	if _, err := q.Exec(ctx, &row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewError(ErrNotFound, err, op)
		}
		return nil, NewError(ErrOthers, err, op)
	}
	return &row, nil
}

// Delete removes all rows matching predicate and returns true if one or more
// rows were deleted. Zero deleted rows maps to ErrNotFound: a delete is
// expected to target an existing entity, unlike Update's zero count.
func Delete[T any](ctx context.Context, conn bun.IDB, predicate Predicate) (bool, error) {
	expr, args := predicate.Conditions()
	q := conn.NewDelete().Model((*T)(nil)).Where(expr, args...)
	logQuery(q)

	res, err := q.Exec(ctx)
	if err != nil {
		return false, NewError(ErrOthers, err, "Error while deleting")
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, NewError(ErrOthers, err, "Error while deleting")
	}
	if count == 0 {
		return false, NewError(ErrNotFound, nil, "No records deleted")
	}
	database.GetLogger().Debug("records deleted", "count", count)
	return true, nil
}

// DeleteOneWithResult deletes matching rows and returns the first deleted
// row. Engines without a row-returning delete read the row first and delete
// second.
func DeleteOneWithResult[T any](ctx context.Context, conn bun.IDB, predicate Predicate) (*T, error) {
	expr, args := predicate.Conditions()

	if !conn.Dialect().Features().Has(feature.Returning) {
		row, err := findOneCore[T](ctx, conn, predicate)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, NewError(ErrNotFound, nil, "Object to be deleted does not exist")
			}
			return nil, err
		}
		if _, err := Delete[T](ctx, conn, predicate); err != nil {
			return nil, err
		}
		return row, nil
	}

	var rows []T
	q := conn.NewDelete().Model((*T)(nil)).Where(expr, args...).Returning("*")
	logQuery(q)
	if _, err := q.Exec(ctx, &rows); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, NewError(ErrOthers, err, "Error while deleting")
	}
	if len(rows) == 0 {
		return nil, NewError(ErrNotFound, nil, "Object to be deleted does not exist")
	}
	return &rows[0], nil
}

func findByKeyCore[T any](ctx context.Context, conn bun.IDB, key interface{}) (*T, error) {
	column, err := pkColumn[T](conn)
	if err != nil {
		return nil, err
	}

	var row T
	q := conn.NewSelect().Model(&row).Where("? = ?", bun.Ident(column), key).Limit(1)
	logQuery(q)

	if err := q.Scan(ctx); err != nil {
		op := fmt.Sprintf("Error finding record by primary key: %v", key)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewError(ErrNotFound, err, op)
		}
		return nil, NewError(ErrOthers, err, op)
	}
	return &row, nil
}

// FindByKey looks up exactly one row by primary key. An engine "not found"
// maps to ErrNotFound, everything else to ErrOthers.
func FindByKey[T any](ctx context.Context, conn bun.IDB, key interface{}) (*T, error) {
	return findByKeyCore[T](ctx, conn, key)
}

// FindByKeyOptional behaves like FindByKey but converts ErrNotFound into a
// nil row. Every other error propagates unchanged.
func FindByKeyOptional[T any](ctx context.Context, conn bun.IDB, key interface{}) (*T, error) {
	return toOptional(findByKeyCore[T](ctx, conn, key))
}

func findOneCore[T any](ctx context.Context, conn bun.IDB, predicate Predicate) (*T, error) {
	expr, args := predicate.Conditions()

	var row T
	q := conn.NewSelect().Model(&row).Where(expr, args...).Limit(1)
	logQuery(q)

	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewError(ErrNotFound, err, "Error finding record by predicate")
		}
		return nil, NewError(ErrOthers, err, "Error finding record by predicate")
	}
	return &row, nil
}

// FindOne looks up exactly one row matching predicate, with the same error
// contract as FindByKey.
func FindOne[T any](ctx context.Context, conn bun.IDB, predicate Predicate) (*T, error) {
	return findOneCore[T](ctx, conn, predicate)
}

// FindOneOptional behaves like FindOne but converts ErrNotFound into a nil
// row.
func FindOneOptional[T any](ctx context.Context, conn bun.IDB, predicate Predicate) (*T, error) {
	return toOptional(findOneCore[T](ctx, conn, predicate))
}

// Filter returns all rows matching predicate, capped by limit when limit is
// positive. A predicate that cleanly matches nothing yields an empty slice;
// engine failures carry ErrNotFound, a deliberately narrower surface than
// the single-row primitives.
func Filter[T any](ctx context.Context, conn bun.IDB, predicate Predicate, limit int) ([]T, error) {
	var rows []T
	q := conn.NewSelect().Model(&rows)
	if !predicate.IsZero() {
		expr, args := predicate.Conditions()
		q = q.Where(expr, args...)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	logQuery(q)

	if err := q.Scan(ctx); err != nil {
		return nil, NewError(ErrNotFound, err, "Error filtering records by predicate")
	}
	return rows, nil
}

// FilterOrder behaves like Filter but pushes an ORDER BY and caps the result
// at 100 rows when no explicit limit is given.
func FilterOrder[T any](ctx context.Context, conn bun.IDB, predicate Predicate, limit int, order Order) ([]T, error) {
	if limit <= 0 {
		limit = defaultFilterLimit
	}
	orderExpr, orderArg := order.expr()

	var rows []T
	q := conn.NewSelect().Model(&rows)
	if !predicate.IsZero() {
		expr, args := predicate.Conditions()
		q = q.Where(expr, args...)
	}
	q = q.OrderExpr(orderExpr, orderArg).Limit(limit)
	logQuery(q)

	if err := q.Scan(ctx); err != nil {
		return nil, NewError(ErrNotFound, err, "Error filtering records by predicate and order")
	}
	return rows, nil
}

// toOptional centralizes the "optional" conversion: only ErrNotFound is
// absorbed, every other error propagates unchanged.
func toOptional[T any](row *T, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

func pkColumn[T any](conn bun.IDB) (string, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	table := conn.Dialect().Tables().Get(typ)
	if table == nil || len(table.PKs) != 1 {
		return "", NewError(ErrOthers, nil,
			fmt.Sprintf("Table for %s does not have a single primary key column", typ.Name()))
	}
	return table.PKs[0].Name, nil
}

func pkValues[T any](conn bun.IDB, rows []T) ([]interface{}, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	table := conn.Dialect().Tables().Get(typ)
	if table == nil || len(table.PKs) != 1 {
		return nil, NewError(ErrOthers, nil,
			fmt.Sprintf("Table for %s does not have a single primary key column", typ.Name()))
	}
	pk := table.PKs[0]

	keys := make([]interface{}, len(rows))
	for i := range rows {
		keys[i] = pk.Value(reflect.ValueOf(&rows[i]).Elem()).Interface()
	}
	return keys, nil
}
