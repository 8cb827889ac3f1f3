package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"heartbridge/internal/config"
	"heartbridge/internal/database"
	"heartbridge/internal/logger"
	"heartbridge/internal/repository"
	"heartbridge/internal/seed"
	"heartbridge/internal/service"
)

func main() {
	developersCmd := flag.NewFlagSet("developers", flag.ExitOnError)
	confirm := developersCmd.Bool("confirm", false, "Actually create the accounts")

	if len(os.Args) < 2 || os.Args[1] != "developers" {
		printUsage()
		os.Exit(1)
	}
	developersCmd.Parse(os.Args[2:])

	if !*confirm {
		fmt.Println("This creates admin accounts dev1..dev5 with password " + seed.DeveloperPassword + ".")
		fmt.Println("Re-run with -confirm to proceed.")
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.Load(config.FilePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Configure(logger.Config{Level: logger.ParseLevel(cfg.LogLevel), Pretty: true})

	if cfg.DatabaseType == config.DatabaseMemory {
		logger.Fatal().Msg("Seeding the in-memory store has no lasting effect; set DATABASE_TYPE")
	}

	ctx := context.Background()
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	services := service.New(repository.NewStore(db), service.Options{SessionDuration: cfg.SessionDuration})
	result, err := seed.SeedDevelopers(ctx, services.Auth)
	logger.Info().Strs("created", result.Created).Strs("existing", result.Existing).Msg("Developer accounts seeded")
	if err != nil {
		logger.Fatal().Err(err).Msg("Some developer accounts could not be seeded")
	}
}

func printUsage() {
	fmt.Println("HeartBridge Seed Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  seed developers -confirm    Create admin accounts dev1..dev5 (password " + seed.DeveloperPassword + ")")
}
