package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/tiktok-clone-auth/config"
	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
	pginfra "github.com/oksasatya/tiktok-clone-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/tiktok-clone-auth/pkg/helpers"
)

// Seeds a demo account for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)

	const (
		email    = "demo@example.com"
		password = "password123"
	)

	if existing, err := users.GetByEmail(ctx, email); err == nil {
		fmt.Printf("demo user already seeded: id=%s username=%s\n", existing.ID, existing.Username)
		return
	}

	u, _, err := entity.NewUser(email, "demo_user", time.Date(1998, time.April, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		log.Fatalf("failed to build demo user: %v", err)
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u.ChangePassword(hash)
	u.ConfirmEmail()
	u.Verify()

	if err := users.Create(ctx, u); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, u.Email, u.Username, password)
}
