package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/itsnaaur/OpenLine/internal/config"
	"github.com/itsnaaur/OpenLine/internal/database"
	"github.com/itsnaaur/OpenLine/internal/utils"
	"github.com/itsnaaur/OpenLine/pkg/logger"
)

// seed-admin creates or refreshes an admin account so a fresh deployment
// has someone who can log in. Reporters never register, so this is the
// only way an account comes into being.
//
// Usage:
//
//	seed-admin -email hr@example.com -name "HR Desk" -password ...
//
// The password may also come from SEED_ADMIN_PASSWORD to keep it out of
// shell history. Re-running with an existing email resets the password
// and reactivates the account.

type seedInput struct {
	Email    string
	Name     string
	Password string
}

func resolveInput(email, name, password, envPassword string) (seedInput, error) {
	in := seedInput{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Name:     strings.TrimSpace(name),
		Password: password,
	}
	if in.Password == "" {
		in.Password = envPassword
	}
	at := strings.Index(in.Email, "@")
	if at < 1 || at == len(in.Email)-1 {
		return seedInput{}, fmt.Errorf("a valid -email is required")
	}
	if in.Name == "" {
		return seedInput{}, fmt.Errorf("-name is required")
	}
	if len(in.Password) < 8 {
		return seedInput{}, fmt.Errorf("password must be at least 8 characters (-password or SEED_ADMIN_PASSWORD)")
	}
	return in, nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	l := logger.New(cfg.Env)

	email := flag.String("email", "", "admin email (required)")
	name := flag.String("name", "", "display name (required)")
	password := flag.String("password", "", "password; falls back to SEED_ADMIN_PASSWORD")
	flag.Parse()

	in, err := resolveInput(*email, *name, *password, os.Getenv("SEED_ADMIN_PASSWORD"))
	if err != nil {
		l.Fatal().Err(err).Msg("invalid input")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		l.Fatal().Err(err).Msg("password hash failed")
	}

	ctx := context.Background()
	pool, err := database.Open(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	var id string
	err = pool.QueryRow(ctx, `
		INSERT INTO admins (email, name, password_h, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, password_h = EXCLUDED.password_h,
		    active = TRUE, updated_at = NOW()
		RETURNING id
	`, in.Email, in.Name, hash).Scan(&id)
	if err != nil {
		l.Fatal().Err(err).Msg("seed failed")
	}

	l.Info().Str("id", id).Str("email", in.Email).Msg("admin account ready")
}
