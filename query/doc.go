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

// Package query provides generic, table-agnostic CRUD primitives built on Bun:
// insert, predicate-scoped update and delete, key and predicate lookups, and
// bounded filtered listings. On engines with a RETURNING clause every
// primitive is a single statement against the connection handle it is given;
// engines without one get documented multi-statement fallbacks for the
// row-returning update and delete variants, which callers can make atomic by
// passing a transactional connection. Every statement emits a debug trace of
// the rendered SQL, and engine failures map into a small error taxonomy.
package query
