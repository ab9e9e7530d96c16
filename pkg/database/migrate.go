package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/campuslink/campus-events-api/pkg/config"
)

// Migrate applies pending migrations. The schema owns the uniqueness
// constraints (student email, event code per college, one active
// registration per pair, one attendance per registration, one feedback per
// attendance), so it must be current before the API accepts writes.
func Migrate(cfg config.DatabaseConfig) error {
	url := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode)

	m, err := migrate.New(fmt.Sprintf("file://%s", cfg.MigrationsPath), url)
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}
