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
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// Predicate is a composable boolean expression over columns, built by the
// caller and passed by value into a primitive for a single call. Columns are
// rendered as quoted identifiers, values as bound parameters.
type Predicate struct {
	expr string
	args []interface{}
}

// Eq builds a column = value equality predicate.
func Eq(column string, value interface{}) Predicate {
	return Predicate{
		expr: "? = ?",
		args: []interface{}{bun.Ident(column), value},
	}
}

// And combines two predicates into a conjunction.
func (p Predicate) And(other Predicate) Predicate {
	if p.IsZero() {
		return other
	}
	if other.IsZero() {
		return p
	}
	return Predicate{
		expr: fmt.Sprintf("(%s) AND (%s)", p.expr, other.expr),
		args: append(append([]interface{}{}, p.args...), other.args...),
	}
}

// IsZero reports whether the predicate carries no condition.
func (p Predicate) IsZero() bool { return p.expr == "" }

// Conditions returns the WHERE clause schema and its bound arguments.
func (p Predicate) Conditions() (string, []interface{}) { return p.expr, p.args }

// Order is an ORDER BY expression over a single column.
type Order struct {
	column string
	desc   bool
}

// Asc orders ascending by column.
func Asc(column string) Order { return Order{column: column} }

// Desc orders descending by column.
func Desc(column string) Order { return Order{column: column, desc: true} }

func (o Order) expr() (string, interface{}) {
	if o.desc {
		return "? DESC", bun.Ident(o.column)
	}
	return "? ASC", bun.Ident(o.column)
}

type assignment struct {
	column string
	value  interface{}
}

// Changeset is a partial update payload: an ordered set of column
// assignments. The core borrows it for the duration of one call and never
// retains it. An empty changeset is a legitimate caller state ("nothing to
// change") and is classified by the primitives, not by the engine.
type Changeset struct {
	assignments []assignment
}

// NewChangeset returns an empty changeset.
func NewChangeset() *Changeset { return &Changeset{} }

// Set appends a column assignment and returns the changeset for chaining.
func (c *Changeset) Set(column string, value interface{}) *Changeset {
	c.assignments = append(c.assignments, assignment{column: column, value: value})
	return c
}

// Empty reports whether the changeset carries no assignments.
func (c *Changeset) Empty() bool { return c == nil || len(c.assignments) == 0 }

func (c *Changeset) apply(q *bun.UpdateQuery) *bun.UpdateQuery {
	for _, a := range c.assignments {
		q = q.Set("? = ?", bun.Ident(a.column), a.value)
	}
	return q
}

// String renders the assigned columns for error context.
func (c *Changeset) String() string {
	if c.Empty() {
		return "(no assignments)"
	}
	cols := make([]string, len(c.assignments))
	for i, a := range c.assignments {
		cols[i] = a.column
	}
	return strings.Join(cols, ", ")
}
