package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/matth2611/Holy-navigator/internal/db"
)

// OpenDB connects to DATABASE_URL or skips the test when it is unset.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load("../../.env.local")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	d, err := db.Connect(dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return d
}
