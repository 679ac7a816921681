package main

import (
	"accounts/internal/db"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
)

type config struct {
	PostgresqlURL  string `env:"POSTGRESQL_URL,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
}

func main() {
	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := db.ApplyMigrations(cfg.MigrationsPath, cfg.PostgresqlURL); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migrations applied.")
}
