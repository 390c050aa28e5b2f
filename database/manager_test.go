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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sqliteTestConnConfig() *ConnectionConfig {
	cfg := DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = ":memory:"
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	// keep the background health-check loop out of unit tests
	cfg.HealthCheckInterval = 0
	cfg.EnableReconnect = false
	return cfg
}

func sqliteTestConfig() *Config {
	return &Config{
		ConnectionConfig:  *sqliteTestConnConfig(),
		DataMigrateConfig: DataMigrateConfig{EnableMigrateOnStartup: true},
	}
}

func TestFactoryLifecycle(t *testing.T) {
	ctx := context.Background()

	factory := NewDatabaseFactory()
	if _, err := factory.CreateFromConfig(sqliteTestConfig()); err != nil {
		t.Fatalf("create from config: %v", err)
	}
	if err := factory.InitializeDatabase(ctx); err != nil {
		t.Fatalf("initialize database: %v", err)
	}
	defer factory.Close()

	db := factory.GetDB()
	if db == nil {
		t.Fatal("expected a live bun.DB")
	}

	var one int
	if err := db.NewSelect().ColumnExpr("1").Scan(ctx, &one); err != nil {
		t.Fatalf("probe query: %v", err)
	}
	if one != 1 {
		t.Fatalf("expected 1, got %d", one)
	}

	health := factory.GetHealthStatus(ctx)
	if !health.Healthy || !health.Connected {
		t.Fatalf("expected healthy connection, got %+v", health)
	}
	if health.LastCheckTime.IsZero() {
		t.Fatal("expected health check timestamp")
	}

	stats := factory.GetStats()
	if stats.MaxOpenConns != 1 {
		t.Fatalf("expected pool cap 1, got %d", stats.MaxOpenConns)
	}
}

func TestFactoryRejectsUnsupportedType(t *testing.T) {
	cfg := sqliteTestConfig()
	cfg.ConnectionConfig.Type = "oracle"

	if _, err := NewDatabaseFactory().CreateFromConfig(cfg); err == nil {
		t.Fatal("expected an error for an unsupported database type")
	}
}

func TestFactoryEnvOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_CONN_MAX_LIFETIME", "120")
	t.Setenv("DB_MIGRATE_ON_STARTUP", "false")
	t.Setenv("DB_PORT", "not-a-number")

	cfg := sqliteTestConfig()
	if _, err := NewDatabaseFactory().CreateFromConfig(cfg); err != nil {
		t.Fatalf("create from config: %v", err)
	}

	if cfg.ConnectionConfig.MaxOpenConns != 7 {
		t.Fatalf("expected env pool cap 7, got %d", cfg.ConnectionConfig.MaxOpenConns)
	}
	if cfg.ConnectionConfig.ConnMaxLifetime != 120*time.Second {
		t.Fatalf("expected env lifetime 120s, got %v", cfg.ConnectionConfig.ConnMaxLifetime)
	}
	if cfg.DataMigrateConfig.EnableMigrateOnStartup {
		t.Fatal("expected env to disable migrate-on-startup")
	}
	// unparsable values leave the configuration untouched
	if cfg.ConnectionConfig.Port != 0 {
		t.Fatalf("expected port unchanged, got %d", cfg.ConnectionConfig.Port)
	}
}

func TestManagerReconnect(t *testing.T) {
	ctx := context.Background()

	manager := NewDatabaseManager(sqliteTestConnConfig())
	if err := manager.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer manager.Disconnect()

	if err := manager.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := manager.Reconnect(ctx); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if err := manager.Ping(ctx); err != nil {
		t.Fatalf("ping after reconnect: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.yaml")
	content := []byte(`
connection_config:
  type: postgres
  host: db.internal
  port: 5432
  username: payrail
  dbname: payments
  sslmode: disable
  max_open_conns: 25
data_migrate_config:
  enable_migrate_on_startup: true
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	cc := cfg.ConnectionConfig
	if cc.Type != "postgres" || cc.Host != "db.internal" || cc.Port != 5432 {
		t.Fatalf("unexpected connection config: %+v", cc)
	}
	if cc.MaxOpenConns != 25 {
		t.Fatalf("expected file override of pool cap, got %d", cc.MaxOpenConns)
	}
	// fields the file leaves unset keep their defaults
	if cc.ConnectTimeout != 10*time.Second {
		t.Fatalf("expected default connect timeout, got %v", cc.ConnectTimeout)
	}
	if !cfg.DataMigrateConfig.EnableMigrateOnStartup {
		t.Fatal("expected migrate-on-startup enabled")
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
