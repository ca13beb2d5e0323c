package database

import (
	"path/filepath"
	"testing"

	"assettracker/internal/config"
	"assettracker/internal/logger"
)

func TestConfig_URLs(t *testing.T) {
	cfg := NewConfig(&config.Config{
		StoreDriver: config.StorePostgres,
		DBHost:      "db",
		DBPort:      "5432",
		DBUser:      "assets",
		DBPassword:  "p@ss word",
		DBName:      "portfolio",
		DBSSLMode:   "disable",
	})

	if got, want := cfg.DSN(), "host=db port=5432 user=assets password=p@ss word dbname=portfolio sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if got, want := cfg.URL(), "postgres://assets:p%40ss%20word@db:5432/portfolio?sslmode=disable"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
	if got := cfg.MigrationsSource(); got != "file://migrations" {
		t.Errorf("MigrationsSource() = %q", got)
	}
}

func TestNewManager_SQLite(t *testing.T) {
	logger.Init("test", "error")

	cfg := &Config{Driver: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "sub", "portfolio.db")}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	for _, table := range []string{"portfolio_days", "portfolio_stocks"} {
		if !m.DB().Migrator().HasTable(table) {
			t.Errorf("table %q missing after migration", table)
		}
	}
}

func TestNewManager_UnknownDriver(t *testing.T) {
	if _, err := NewManager(&Config{Driver: "json"}); err == nil {
		t.Fatal("expected error for a non-SQL driver")
	}
}
