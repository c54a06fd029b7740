package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/matth2611/Holy-navigator/internal/analysis"
	"github.com/matth2611/Holy-navigator/internal/auth"
	"github.com/matth2611/Holy-navigator/internal/bookmarks"
	"github.com/matth2611/Holy-navigator/internal/db"
	"github.com/matth2611/Holy-navigator/internal/forum"
	"github.com/matth2611/Holy-navigator/internal/journal"
	"github.com/matth2611/Holy-navigator/internal/logger"
	"github.com/matth2611/Holy-navigator/internal/media"
	"github.com/matth2611/Holy-navigator/internal/profile"
	"github.com/matth2611/Holy-navigator/internal/push"
	"github.com/matth2611/Holy-navigator/internal/readingplan"
	"github.com/matth2611/Holy-navigator/internal/security"
	"github.com/matth2611/Holy-navigator/internal/seeds"
	"github.com/matth2611/Holy-navigator/internal/subscription"
)

// CLI flags
var (
	dsn          = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	dryRun       = flag.Bool("dry-run", false, "Parse the seed data only; no DB writes")
	demoPassword = flag.String("demo-password", os.Getenv("SEED_DEMO_PASSWORD"), "Password for the demo account (default: env SEED_DEMO_PASSWORD)")
	advisoryKey  = flag.Int64("advisory-lock", 0, "Optional Postgres advisory lock key (e.g., 424242). 0 = disabled")
)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	log := logger.SetupDefault(os.Stdout, os.Getenv("LOG_LEVEL"))

	bundle, err := seeds.Load()
	if err != nil {
		fatalf("seed data: %v", err)
	}
	fmt.Printf("Loaded demo user %s and %d welcome posts\n", bundle.DemoUser.Email, len(bundle.Posts))

	if *dryRun {
		for _, p := range bundle.Posts {
			fmt.Printf("  %s  %q %v\n", p.ID, p.Title, p.Tags)
		}
		fmt.Println("Dry run complete. No changes made.")
		return
	}
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}
	if *demoPassword == "" {
		fatalf("--demo-password not provided and SEED_DEMO_PASSWORD not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sqlDB, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	// Session-level lock, so it has to stay on one pooled connection.
	if *advisoryKey != 0 {
		conn, err := sqlDB.Conn(ctx)
		if err != nil {
			fatalf("advisory lock conn: %v", err)
		}
		defer conn.Close()
		if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, *advisoryKey); err != nil {
			fatalf("advisory lock: %v", err)
		}
		defer func() {
			_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, *advisoryKey)
		}()
	}

	d, err := db.FromSQL(sqlDB, log)
	if err != nil {
		fatalf("gorm: %v", err)
	}

	for _, initFn := range []func(*gorm.DB) error{
		auth.Init,
		bookmarks.Init,
		journal.Init,
		forum.Init,
		readingplan.Init,
		subscription.Init,
		profile.Init,
		media.Init,
		analysis.Init,
		push.Init,
	} {
		if err := initFn(d); err != nil {
			fatalf("migrate: %v", err)
		}
	}

	seeder := seeds.NewSeeder(d, security.NewMarkdownRenderer(security.NewSanitizer()), log)
	res, err := seeder.SeedAll(ctx, bundle, *demoPassword)
	if err != nil {
		fatalf("seed: %v", err)
	}
	fmt.Printf("Done: user_created=%v posts_created=%d\n", res.UserCreated, res.PostsCreated)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
