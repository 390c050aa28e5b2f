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
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// MigrationManager creates tables for all registered models, in registry
// priority order. Schema ownership stays with the entity packages; this only
// renders their Bun model definitions into CREATE TABLE IF NOT EXISTS.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
}

// NewMigrationManager returns a migration manager for the given database.
func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	return &MigrationManager{db: db, logger: logger}
}

// RunMigrations creates missing tables for every registered model.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	for _, model := range GetRegisteredModels() {
		instance := model.Instance()
		if _, err := mm.db.NewCreateTable().Model(instance).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", instance, err)
		}
		if mm.logger != nil {
			mm.logger.Debug("Table ensured for model", "model", fmt.Sprintf("%T", instance))
		}
	}
	return nil
}
