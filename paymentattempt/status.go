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

import "github.com/payrail/storage/types"

// AttemptStatus is the lifecycle state of a payment attempt, stored as a
// string column.
type AttemptStatus string

const (
	StatusStarted    AttemptStatus = "started"
	StatusPending    AttemptStatus = "pending"
	StatusAuthorized AttemptStatus = "authorized"
	StatusCharged    AttemptStatus = "charged"
	StatusFailure    AttemptStatus = "failure"
)

var attemptStatuses = []AttemptStatus{
	StatusStarted,
	StatusPending,
	StatusAuthorized,
	StatusCharged,
	StatusFailure,
}

var attemptStatusDescs = map[AttemptStatus]string{
	StatusStarted:    "attempt created, no connector call yet",
	StatusPending:    "waiting on the connector",
	StatusAuthorized: "funds reserved, capture pending",
	StatusCharged:    "funds captured",
	StatusFailure:    "attempt failed terminally",
}

var _ types.BaseEnum = StatusStarted

func (s AttemptStatus) IsValid() bool {
	for _, v := range attemptStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s AttemptStatus) Number() int {
	for i, v := range attemptStatuses {
		if s == v {
			return i
		}
	}
	return types.IllegalValue
}

func (s AttemptStatus) String() string { return string(s) }

func (s AttemptStatus) Name() string {
	if s.IsValid() {
		return string(s)
	}
	return types.IllegalName
}

func (s AttemptStatus) Desc() string {
	if d, ok := attemptStatusDescs[s]; ok {
		return d
	}
	return types.IllegalDesc
}
