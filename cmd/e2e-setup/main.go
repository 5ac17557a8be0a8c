package main

import (
	"context"
	"flag"
	"log"
	"time"

	"pure-resume/internal/config"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
	"pure-resume/internal/infra/db/postgres"
	"pure-resume/internal/infra/redis"
	"pure-resume/internal/usecase"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// This script sets up a clean, predictable database state for manual
// end-to-end testing: schema, empty tables, a known admin, a known user,
// and a handful of fresh activation codes.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	// --- Connect to Postgres ---
	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	// --- Connect to Redis ---
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	log.Println("[1/4] Ensuring schema...")
	ensureSchema(ctx, pool)

	log.Println("[2/4] Wiping Redis cache and database data...")
	if err := redisClient.FlushDB(ctx); err != nil {
		log.Fatalf("failed to flush redis: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		TRUNCATE users, activation_codes, subscription_records, resumes
		RESTART IDENTITY CASCADE;
	`); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	log.Println("[3/4] Seeding known accounts...")
	userRepo := postgres.NewPostgresUserRepo(pool)
	admin := mustUser(ctx, userRepo, "e2e-admin@example.com", "e2e-admin", true)
	mustUser(ctx, userRepo, "e2e-user@example.com", "e2e-user", false)

	log.Println("[4/4] Seeding activation codes...")
	logger := zerolog.Nop()
	adminUC := usecase.NewAdminUseCase(userRepo, postgres.NewActivationCodeRepo(pool), postgres.NewTxManager(pool), &logger)
	codes, err := adminUC.GenerateCodes(ctx, admin.ID, 5, 30)
	if err != nil {
		log.Fatalf("generate codes: %v", err)
	}
	for _, c := range codes {
		log.Printf("  code: %s (deadline %s)", c.Code, c.ExpiresAt.Format(time.RFC3339))
	}

	log.Println("--- E2E Environment Setup Complete ---")
}

func mustUser(ctx context.Context, repo repository.UserRepository, email, username string, isAdmin bool) *model.User {
	u, err := model.NewUser("", email, username)
	if err != nil {
		log.Fatalf("build user %s: %v", email, err)
	}
	u.IsAdmin = isAdmin
	if err := repo.Save(ctx, repository.NoTX, u); err != nil {
		log.Fatalf("save user %s: %v", email, err)
	}
	log.Printf("  user: %s (id=%s admin=%v)", email, u.ID, isAdmin)
	return u
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
	id                       TEXT PRIMARY KEY,
	email                    TEXT NOT NULL UNIQUE,
	username                 TEXT NOT NULL,
	is_admin                 BOOLEAN NOT NULL DEFAULT FALSE,
	banned                   BOOLEAN NOT NULL DEFAULT FALSE,
	subscription_active      BOOLEAN NOT NULL DEFAULT TRUE,
	subscription_expires_at  TIMESTAMPTZ,
	activation_code_id       TEXT,
	registered_at            TIMESTAMPTZ NOT NULL,
	last_active_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS activation_codes (
	id                   TEXT PRIMARY KEY,
	code                 TEXT NOT NULL UNIQUE,
	created_at           TIMESTAMPTZ NOT NULL,
	expires_at           TIMESTAMPTZ NOT NULL,
	redeemed_by_user_id  TEXT,
	redeemed_at          TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS subscription_records (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL REFERENCES users(id),
	activation_code_id  TEXT NOT NULL,
	start_at            TIMESTAMPTZ NOT NULL,
	expires_at          TIMESTAMPTZ NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_subscription_records_user ON subscription_records (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS resumes (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(id),
	title       TEXT NOT NULL,
	content     JSONB,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_resumes_user ON resumes (user_id, updated_at DESC);
`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
}
