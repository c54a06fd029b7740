package db

import (
	"fmt"

	"gorm.io/gorm"
)

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// Migrate creates schema if needed and auto-migrates the given models into it.
// Every feature's Init goes through here.
func Migrate(d *gorm.DB, schema string, models ...any) error {
	if err := EnsureSchema(d, schema); err != nil {
		return fmt.Errorf("ensure schema %s: %w", schema, err)
	}
	if err := d.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate %s: %w", schema, err)
	}
	return nil
}
