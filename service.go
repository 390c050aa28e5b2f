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

// Package storage is a generic relational data-access layer: reusable CRUD
// primitives with a uniform error taxonomy, plus entity query facades built
// on top of them.
package storage

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	"github.com/payrail/storage/database"
	"github.com/payrail/storage/query"
	"github.com/payrail/storage/types"
)

// Service exposes the generic primitives for one entity type, bound to the
// global database connection.
type Service[T any] interface {
	// Insert stores a new row and returns it with generated columns filled.
	Insert(ctx context.Context, model *T) (*T, error)

	// Update applies a changeset to rows matching predicate and returns the
	// affected row count.
	Update(ctx context.Context, predicate query.Predicate, values *query.Changeset) (int64, error)

	// UpdateWithResults applies a changeset and returns the updated rows.
	UpdateWithResults(ctx context.Context, predicate query.Predicate, values *query.Changeset) ([]T, error)

	// UpdateByKey updates the row identified by its primary key; an empty
	// changeset returns the current row unchanged.
	UpdateByKey(ctx context.Context, key interface{}, values *query.Changeset) (*T, error)

	// Delete removes rows matching predicate; deleting nothing is an error.
	Delete(ctx context.Context, predicate query.Predicate) (bool, error)

	// DeleteOneWithResult removes matching rows and returns the first
	// deleted row.
	DeleteOneWithResult(ctx context.Context, predicate query.Predicate) (*T, error)

	// FindByKey returns the row identified by its primary key.
	FindByKey(ctx context.Context, key interface{}) (*T, error)

	// FindByKeyOptional returns nil instead of a not-found error.
	FindByKeyOptional(ctx context.Context, key interface{}) (*T, error)

	// FindOne returns the single row matching predicate.
	FindOne(ctx context.Context, predicate query.Predicate) (*T, error)

	// FindOneOptional returns nil instead of a not-found error.
	FindOneOptional(ctx context.Context, predicate query.Predicate) (*T, error)

	// Filter returns rows matching predicate, capped by limit when positive.
	Filter(ctx context.Context, predicate query.Predicate, limit int) ([]T, error)

	// FilterOrder behaves like Filter with an ORDER BY and a default cap.
	FilterOrder(ctx context.Context, predicate query.Predicate, limit int, order query.Order) ([]T, error)

	// Page returns one page of matching rows with the total count.
	Page(ctx context.Context, predicate query.Predicate, request *types.PageRequest) (*types.Pagination[T], error)

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery

	// InsertBuilder returns a Bun insert query builder for the entity.
	InsertBuilder() *bun.InsertQuery

	// UpdateBuilder returns a Bun update query builder for the entity.
	UpdateBuilder() *bun.UpdateQuery

	// DeleteBuilder returns a Bun delete query builder for the entity.
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any] struct {
	db   bun.IDB
	once sync.Once
}

// NewService returns a Service backed by the global database connection.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

// NewServiceWithConn returns a Service bound to an explicit connection
// handle, e.g. a transaction.
func NewServiceWithConn[T any](conn bun.IDB) Service[T] {
	s := &baseServiceImpl[T]{}
	s.once.Do(func() { s.db = conn })
	return s
}

func (s *baseServiceImpl[T]) conn() bun.IDB {
	s.once.Do(func() { s.db = database.GetDB() })
	return s.db
}

func (s *baseServiceImpl[T]) Insert(ctx context.Context, model *T) (*T, error) {
	return query.Insert(ctx, s.conn(), model)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, predicate query.Predicate, values *query.Changeset) (int64, error) {
	return query.Update[T](ctx, s.conn(), predicate, values)
}

func (s *baseServiceImpl[T]) UpdateWithResults(ctx context.Context, predicate query.Predicate, values *query.Changeset) ([]T, error) {
	return query.UpdateWithResults[T](ctx, s.conn(), predicate, values)
}

func (s *baseServiceImpl[T]) UpdateByKey(ctx context.Context, key interface{}, values *query.Changeset) (*T, error) {
	return query.UpdateByKey[T](ctx, s.conn(), key, values)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, predicate query.Predicate) (bool, error) {
	return query.Delete[T](ctx, s.conn(), predicate)
}

func (s *baseServiceImpl[T]) DeleteOneWithResult(ctx context.Context, predicate query.Predicate) (*T, error) {
	return query.DeleteOneWithResult[T](ctx, s.conn(), predicate)
}

func (s *baseServiceImpl[T]) FindByKey(ctx context.Context, key interface{}) (*T, error) {
	return query.FindByKey[T](ctx, s.conn(), key)
}

func (s *baseServiceImpl[T]) FindByKeyOptional(ctx context.Context, key interface{}) (*T, error) {
	return query.FindByKeyOptional[T](ctx, s.conn(), key)
}

func (s *baseServiceImpl[T]) FindOne(ctx context.Context, predicate query.Predicate) (*T, error) {
	return query.FindOne[T](ctx, s.conn(), predicate)
}

func (s *baseServiceImpl[T]) FindOneOptional(ctx context.Context, predicate query.Predicate) (*T, error) {
	return query.FindOneOptional[T](ctx, s.conn(), predicate)
}

func (s *baseServiceImpl[T]) Filter(ctx context.Context, predicate query.Predicate, limit int) ([]T, error) {
	return query.Filter[T](ctx, s.conn(), predicate, limit)
}

func (s *baseServiceImpl[T]) FilterOrder(ctx context.Context, predicate query.Predicate, limit int, order query.Order) ([]T, error) {
	return query.FilterOrder[T](ctx, s.conn(), predicate, limit, order)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, predicate query.Predicate, request *types.PageRequest) (*types.Pagination[T], error) {
	return query.Page[T](ctx, s.conn(), predicate, request)
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.conn().NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.conn().NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.conn().NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.conn().NewDelete()
}
