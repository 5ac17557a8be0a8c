package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"pure-resume/internal/config"
	"pure-resume/internal/domain/model"
	"pure-resume/internal/domain/ports/repository"
	pg "pure-resume/internal/infra/db/postgres"
	"pure-resume/internal/usecase"

	"github.com/rs/zerolog"
)

// Seeds a bootstrap admin account and a starter batch of activation codes.
// Safe to re-run: existing data short-circuits each step.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminEmail := flag.String("admin-email", "admin@example.com", "bootstrap admin email")
	codeCount := flag.Int("codes", 20, "number of starter activation codes")
	codeDays := flag.Int("code-days", 90, "redemption deadline for starter codes, in days")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := pg.NewPostgresUserRepo(pool)
	codeRepo := pg.NewActivationCodeRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Admin account ----
	admin, err := userRepo.FindByEmail(ctx, repository.NoTX, *adminEmail)
	if err == nil {
		fmt.Printf("admin %s already present (id=%s). No changes.\n", admin.Email, admin.ID)
	} else {
		u, err := model.NewUser("", *adminEmail, "admin")
		if err != nil {
			log.Fatalf("build admin: %v", err)
		}
		u.IsAdmin = true
		if err := userRepo.Save(ctx, repository.NoTX, u); err != nil {
			log.Fatalf("save admin: %v", err)
		}
		admin, err = userRepo.FindByEmail(ctx, repository.NoTX, *adminEmail)
		if err != nil {
			log.Fatalf("reload admin: %v", err)
		}
		fmt.Printf("seeded admin: %s (id=%s)\n", admin.Email, admin.ID)
	}

	// ---- Starter codes ----
	existing, err := codeRepo.ListAll(ctx, repository.NoTX, 0, 1)
	if err != nil {
		log.Fatalf("list codes: %v", err)
	}
	if len(existing) > 0 {
		fmt.Println("activation codes already present. No changes.")
		return
	}

	logger := zerolog.Nop()
	adminUC := usecase.NewAdminUseCase(userRepo, codeRepo, txManager, &logger)
	codes, err := adminUC.GenerateCodes(ctx, admin.ID, *codeCount, *codeDays)
	if err != nil {
		log.Fatalf("generate codes: %v", err)
	}
	for _, c := range codes {
		fmt.Printf("  %s (expires %s)\n", c.Code, c.ExpiresAt.Format(time.RFC3339))
	}
	fmt.Printf("seeded %d activation codes.\n", len(codes))
}
