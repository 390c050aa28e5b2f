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

// Package paymentattempt is the entity query facade for payment attempts: it
// fixes the generic primitives to the payment_attempt table and adds
// composite-key finders, update fallback policy, and "most recent matching
// row" selection.
package paymentattempt

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/payrail/storage/database"
	"github.com/payrail/storage/query"
	"github.com/payrail/storage/types"
)

// PaymentAttempt is one attempt to collect a payment through a connector.
// A payment can accumulate several attempts; (payment_id, merchant_id)
// scopes them and attempt_id identifies a single one.
type PaymentAttempt struct {
	bun.BaseModel `bun:"table:payment_attempt,alias:pa"`

	ID                     int64            `bun:"id,pk,autoincrement" json:"id"`
	PaymentID              string           `bun:"payment_id,notnull" json:"payment_id"`
	MerchantID             string           `bun:"merchant_id,notnull" json:"merchant_id"`
	AttemptID              string           `bun:"attempt_id,notnull,unique" json:"attempt_id"`
	Status                 AttemptStatus    `bun:"status,notnull" json:"status"`
	Amount                 int64            `bun:"amount,notnull" json:"amount"`
	Currency               string           `bun:"currency" json:"currency"`
	PaymentMethod          string           `bun:"payment_method" json:"payment_method"`
	ConnectorTransactionID *string          `bun:"connector_transaction_id" json:"connector_transaction_id,omitempty"`
	ErrorMessage           *string          `bun:"error_message" json:"error_message,omitempty"`
	Metadata               types.JsonObject `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt              time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	ModifiedAt             time.Time        `bun:"modified_at,nullzero,notnull,default:current_timestamp" json:"modified_at"`
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*PaymentAttempt)(nil), 10))
}

// NewPaymentAttempt returns an attempt in the started state with a generated
// attempt identifier.
func NewPaymentAttempt(paymentID, merchantID string, amount int64, currency string) *PaymentAttempt {
	now := time.Now()
	return &PaymentAttempt{
		PaymentID:  paymentID,
		MerchantID: merchantID,
		AttemptID:  uuid.NewString(),
		Status:     StatusStarted,
		Amount:     amount,
		Currency:   currency,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// PaymentAttemptUpdate is a partial changeset over a payment attempt. Nil
// fields are left untouched; an update with no set fields is a legitimate
// "nothing to change" state handled by the facade.
type PaymentAttemptUpdate struct {
	Status                 *AttemptStatus
	Amount                 *int64
	PaymentMethod          *string
	ConnectorTransactionID *string
	ErrorMessage           *string
}

func (u PaymentAttemptUpdate) changeset() *query.Changeset {
	cs := query.NewChangeset()
	if u.Status != nil {
		cs.Set("status", *u.Status)
	}
	if u.Amount != nil {
		cs.Set("amount", *u.Amount)
	}
	if u.PaymentMethod != nil {
		cs.Set("payment_method", *u.PaymentMethod)
	}
	if u.ConnectorTransactionID != nil {
		cs.Set("connector_transaction_id", *u.ConnectorTransactionID)
	}
	if u.ErrorMessage != nil {
		cs.Set("error_message", *u.ErrorMessage)
	}
	if !cs.Empty() {
		cs.Set("modified_at", time.Now())
	}
	return cs
}
