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

package database

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"
)

func queryEvent(query string, err error) *bun.QueryEvent {
	return &bun.QueryEvent{
		Query:     query,
		StartTime: time.Now().Add(-time.Millisecond),
		Err:       err,
	}
}

func TestQueryHookVerbose(t *testing.T) {
	var buf bytes.Buffer
	h := NewQueryHook("HOOK_TEST_UNSET", true, true)
	h.writer = &buf

	h.AfterQuery(context.Background(), queryEvent("SELECT 1", nil))
	if !strings.Contains(buf.String(), "SELECT 1") {
		t.Fatalf("expected statement in output, got %q", buf.String())
	}
}

func TestQueryHookQuietSkipsSuccess(t *testing.T) {
	var buf bytes.Buffer
	h := NewQueryHook("HOOK_TEST_UNSET", true, false)
	h.writer = &buf

	// quiet mode only reports failures
	h.AfterQuery(context.Background(), queryEvent("SELECT 1", nil))
	if buf.Len() != 0 {
		t.Fatalf("expected no output for a successful statement, got %q", buf.String())
	}

	h.AfterQuery(context.Background(), queryEvent("SELECT broken", errors.New("syntax error")))
	if !strings.Contains(buf.String(), "syntax error") {
		t.Fatalf("expected failure in output, got %q", buf.String())
	}
}

func TestQueryHookEnvOverride(t *testing.T) {
	var buf bytes.Buffer
	h := NewQueryHook("HOOK_TEST_ENV", true, true)
	h.writer = &buf

	t.Setenv("HOOK_TEST_ENV", "0")
	h.AfterQuery(context.Background(), queryEvent("SELECT 1", nil))
	if buf.Len() != 0 {
		t.Fatalf("expected env to disable the hook, got %q", buf.String())
	}

	t.Setenv("HOOK_TEST_ENV", "2")
	h.AfterQuery(context.Background(), queryEvent("SELECT 1", nil))
	if buf.Len() == 0 {
		t.Fatal("expected env to enable verbose mode")
	}
}

func TestQueryHookSilentMode(t *testing.T) {
	var buf bytes.Buffer
	h := NewQueryHook("HOOK_TEST_UNSET", true, true)
	h.writer = &buf

	EnableSqlSilent(true)
	defer EnableSqlSilent(false)

	h.AfterQuery(context.Background(), queryEvent("SELECT 1", nil))
	if buf.Len() != 0 {
		t.Fatalf("expected silent mode to suppress output, got %q", buf.String())
	}
}
