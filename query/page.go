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

	"github.com/uptrace/bun"

	"github.com/payrail/storage/types"
)

// Page returns one page of rows matching predicate along with the total
// match count. Failures map to ErrOthers.
func Page[T any](ctx context.Context, conn bun.IDB, predicate Predicate, request *types.PageRequest) (*types.Pagination[T], error) {
	var rows []*T
	q := conn.NewSelect().Model(&rows)
	if !predicate.IsZero() {
		expr, args := predicate.Conditions()
		q = q.Where(expr, args...)
	}

	pagination := types.NewDefaultPagination[T](request.GetPage(), request.GetPageSize())
	total, err := q.Count(ctx)
	if err != nil {
		return nil, NewError(ErrOthers, err, "Error counting records by predicate")
	}
	if total == 0 {
		return pagination, nil
	}

	q = q.Offset(request.GetOffset()).
		Limit(request.GetPageSize()).
		Order(request.GetOrders()...)
	logQuery(q)

	if err := q.Scan(ctx); err != nil {
		return nil, NewError(ErrOthers, err, "Error paging records by predicate")
	}
	pagination.Total = total
	pagination.Items = rows
	return pagination, nil
}
