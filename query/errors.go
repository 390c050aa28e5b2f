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
	"errors"
	"fmt"
)

// Error kinds returned by the primitives. Match with errors.Is.
//
// Note the asymmetry between the multi-row and single-row surfaces: a SELECT
// that matches nothing is not an error for Filter/FilterOrder (they return an
// empty slice), while their engine failures carry ErrNotFound; an UPDATE that
// matches nothing is a zero row count, not an error; a DELETE that matches
// nothing is ErrNotFound. Call sites depend on each of these behaviors, so
// they are preserved distinctly.
var (
	// ErrUniqueViolation reports that an insert collided with a unique
	// constraint.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrNotFound reports that a lookup or delete yielded no matching row.
	ErrNotFound = errors.New("record not found")

	// ErrNoFieldsToUpdate reports that a changeset carried no assignments.
	// It is a soft condition: entity facades absorb it and treat the
	// unmodified row as current.
	ErrNoFieldsToUpdate = errors.New("no fields to update")

	// ErrOthers covers every unclassified engine or connection failure.
	ErrOthers = errors.New("storage error")
)

// Error attaches a human-readable operation description to a classified
// failure. The kind is matched by errors.Is; the underlying engine error
// stays reachable through Unwrap.
type Error struct {
	Kind  error
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Cause }

// NewError wraps cause with an error kind and an operation description.
// cause may be nil when the condition is synthesized rather than reported by
// the engine (e.g. a delete that matched nothing).
func NewError(kind, cause error, op string) error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}
