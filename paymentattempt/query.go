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

package paymentattempt

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"github.com/payrail/storage/query"
	"github.com/payrail/storage/types"
)

// Insert stores a new attempt and returns the inserted row with generated
// columns filled in.
func Insert(ctx context.Context, conn bun.IDB, attempt *PaymentAttempt) (*PaymentAttempt, error) {
	return query.Insert(ctx, conn, attempt)
}

// Update applies a partial changeset to every attempt row scoped by the
// receiver's (payment_id, merchant_id) pair and returns the updated row.
// When the changeset carries nothing to change, the receiver itself is the
// authoritative current value and is returned unchanged.
func (a *PaymentAttempt) Update(ctx context.Context, conn bun.IDB, update PaymentAttemptUpdate) (*PaymentAttempt, error) {
	rows, err := query.UpdateWithResults[PaymentAttempt](ctx, conn,
		query.Eq("payment_id", a.PaymentID).And(query.Eq("merchant_id", a.MerchantID)),
		update.changeset(),
	)
	if err != nil {
		if errors.Is(err, query.ErrNoFieldsToUpdate) {
			return a, nil
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, query.NewError(query.ErrNotFound, nil, "Error while updating payment attempt")
	}
	updated := rows[len(rows)-1]
	return &updated, nil
}

// FindByPaymentIDMerchantID returns the attempt for a payment/merchant pair.
func FindByPaymentIDMerchantID(ctx context.Context, conn bun.IDB, paymentID, merchantID string) (*PaymentAttempt, error) {
	return query.FindOne[PaymentAttempt](ctx, conn,
		query.Eq("merchant_id", merchantID).And(query.Eq("payment_id", paymentID)))
}

// FindOptionalByPaymentIDMerchantID behaves like FindByPaymentIDMerchantID
// but returns nil instead of a not-found error.
func FindOptionalByPaymentIDMerchantID(ctx context.Context, conn bun.IDB, paymentID, merchantID string) (*PaymentAttempt, error) {
	return query.FindOneOptional[PaymentAttempt](ctx, conn,
		query.Eq("merchant_id", merchantID).And(query.Eq("payment_id", paymentID)))
}

// FindByConnectorTransactionIDPaymentIDMerchantID returns the attempt that
// carries the given connector transaction for a payment/merchant pair.
func FindByConnectorTransactionIDPaymentIDMerchantID(ctx context.Context, conn bun.IDB, connectorTransactionID, paymentID, merchantID string) (*PaymentAttempt, error) {
	return query.FindOne[PaymentAttempt](ctx, conn,
		query.Eq("connector_transaction_id", connectorTransactionID).
			And(query.Eq("payment_id", paymentID)).
			And(query.Eq("merchant_id", merchantID)))
}

// FindByMerchantIDConnectorTxnID returns the attempt for a merchant-scoped
// connector transaction.
func FindByMerchantIDConnectorTxnID(ctx context.Context, conn bun.IDB, merchantID, connectorTxnID string) (*PaymentAttempt, error) {
	return query.FindOne[PaymentAttempt](ctx, conn,
		query.Eq("merchant_id", merchantID).And(query.Eq("connector_transaction_id", connectorTxnID)))
}

// FindByMerchantIDAttemptID returns the attempt with the given attempt
// identifier for a merchant.
func FindByMerchantIDAttemptID(ctx context.Context, conn bun.IDB, merchantID, attemptID string) (*PaymentAttempt, error) {
	return query.FindOne[PaymentAttempt](ctx, conn,
		query.Eq("merchant_id", merchantID).And(query.Eq("attempt_id", attemptID)))
}

// FindLatestByPaymentIDMerchantID returns the most recently created attempt
// for a payment/merchant pair.
func FindLatestByPaymentIDMerchantID(ctx context.Context, conn bun.IDB, paymentID, merchantID string) (*PaymentAttempt, error) {
	rows, err := query.FilterOrder[PaymentAttempt](ctx, conn,
		query.Eq("merchant_id", merchantID).And(query.Eq("payment_id", paymentID)),
		1,
		query.Desc("created_at"),
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, query.NewError(query.ErrNotFound, nil, "No payment attempt found for payment")
	}
	return &rows[0], nil
}

// FindLastSuccessfulAttemptByPaymentIDMerchantID returns the charged attempt
// with the highest creation time for a payment/merchant pair. Ordering is
// performed on the application level instead of the database level: the
// status-scoped result set is fetched unordered and reduced in a single
// max-by-CreatedAt pass.
func FindLastSuccessfulAttemptByPaymentIDMerchantID(ctx context.Context, conn bun.IDB, paymentID, merchantID string) (*PaymentAttempt, error) {
	rows, err := query.Filter[PaymentAttempt](ctx, conn,
		query.Eq("payment_id", paymentID).
			And(query.Eq("merchant_id", merchantID)).
			And(query.Eq("status", StatusCharged)),
		0,
	)
	if err != nil {
		return nil, err
	}

	var latest *PaymentAttempt
	for i := range rows {
		// ties go to the later-scanned row
		if latest == nil || !rows[i].CreatedAt.Before(latest.CreatedAt) {
			latest = &rows[i]
		}
	}
	if latest == nil {
		return nil, query.NewError(query.ErrNotFound, nil, "No successful payment attempt found for payment")
	}
	return latest, nil
}

// ListByMerchantID returns up to limit attempts for a merchant; limit <= 0
// means no cap.
func ListByMerchantID(ctx context.Context, conn bun.IDB, merchantID string, limit int) ([]PaymentAttempt, error) {
	return query.Filter[PaymentAttempt](ctx, conn, query.Eq("merchant_id", merchantID), limit)
}

// PageByMerchantID returns one page of a merchant's attempts with the total
// match count.
func PageByMerchantID(ctx context.Context, conn bun.IDB, merchantID string, request *types.PageRequest) (*types.Pagination[PaymentAttempt], error) {
	return query.Page[PaymentAttempt](ctx, conn, query.Eq("merchant_id", merchantID), request)
}
