package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"soloschedule/internal/database"
	"soloschedule/internal/models"
	"soloschedule/internal/repository"
	"soloschedule/internal/service"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type ServicesConfig struct {
	Services []models.Service `yaml:"services"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		servicesPath = flag.String("services", "configs/services.yaml", "path to services.yaml")
		dbPath       = flag.String("db", "./data/soloschedule.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*servicesPath)
	if err != nil {
		return fmt.Errorf("read services: %w", err)
	}
	var cfg ServicesConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse services: %w", err)
	}
	if len(cfg.Services) == 0 {
		return fmt.Errorf("no services in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	catalog := service.NewCatalogService(repository.NewStore(db, &logger), &logger)
	existing, err := catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("list services: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[s.Name] = true
	}

	created := 0
	updated := 0
	for _, s := range cfg.Services {
		if s.Name == "" {
			continue
		}
		saved, err := catalog.Upsert(ctx, s)
		if err != nil {
			return fmt.Errorf("save %s: %w", s.Name, err)
		}
		if known[saved.Name] {
			updated++
		} else {
			created++
		}
	}

	fmt.Printf("done: created=%d updated=%d\n", created, updated)
	return nil
}
