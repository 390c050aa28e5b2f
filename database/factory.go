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
	"os"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// BaseDatabaseFactory builds a database manager from a Config and drives its
// startup: environment overrides, connection, and migrate-on-startup.
type BaseDatabaseFactory struct {
	config  *Config
	manager AbstractDatabaseManager
	logger  Logger
}

// NewDatabaseFactory returns a factory using the global logger.
func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{logger: GetLogger()}
}

// CreateFromConfig validates the configured database type, applies DB_*
// environment overrides, and constructs the manager.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *Config) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	cc := &cfg.ConnectionConfig
	if !isSupportedDatabaseType(cc.Type) {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v",
			cc.Type, supportedDatabaseTypes)
	}

	applyEnvOverrides(cfg)

	manager := NewDatabaseManager(cc)
	manager.SetLogger(f.logger)

	f.config = cfg
	f.manager = manager
	return manager, nil
}

// InitializeDatabase connects and, when the configuration asks for it, creates
// tables for the registered models.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}

	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if f.config != nil && f.config.DataMigrateConfig.EnableMigrateOnStartup {
		if err := f.manager.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	f.logger.Info("Database initialization completed!")
	return nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envSeconds(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Second
		}
	}
}

// applyEnvOverrides lets DB_* environment variables take precedence over the
// file-loaded configuration.
func applyEnvOverrides(cfg *Config) {
	cc := &cfg.ConnectionConfig
	envString("DB_HOST", &cc.Host)
	envInt("DB_PORT", &cc.Port)
	envString("DB_USERNAME", &cc.Username)
	envString("DB_PASSWORD", &cc.Password)
	envString("DB_NAME", &cc.DBName)
	envString("DB_SSLMODE", &cc.SSLMode)
	envInt("DB_MAX_IDLE_CONNS", &cc.MaxIdleConns)
	envInt("DB_MAX_OPEN_CONNS", &cc.MaxOpenConns)
	envSeconds("DB_CONN_MAX_LIFETIME", &cc.ConnMaxLifetime)
	envBool("DB_ENABLE_RECONNECT", &cc.EnableReconnect)
	envSeconds("DB_RECONNECT_INTERVAL", &cc.ReconnectInterval)
	envBool("DB_ENABLE_QUERY_LOG", &cc.EnableQueryLog)
	envBool("DB_MIGRATE_ON_STARTUP", &cfg.DataMigrateConfig.EnableMigrateOnStartup)
}

// GetManager returns the underlying database manager.
func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

// GetDB returns the Bun database instance, or nil before initialization.
func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

// SetLogger sets the logger on the factory and the underlying manager.
func (f *BaseDatabaseFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

// Close closes the database connection managed by the factory.
func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

// GetHealthStatus returns the current database health status.
func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			Healthy:       false,
			Connected:     false,
			LastError:     "Database manager not initialized",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

// GetStats returns database connection statistics.
func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
