package main

import (
	"fmt"
	"log"

	"facturio/internal/config"
	"facturio/internal/generator"
	"facturio/internal/generator/claude"
	"facturio/internal/generator/gemini"
	"facturio/internal/generator/openai"
	"facturio/internal/handler"
	"facturio/internal/pipeline"
	"facturio/internal/port"
	"facturio/internal/repository/postgres"
	"facturio/internal/router"
	"facturio/internal/service"
	s3storage "facturio/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func registerProviders() {
	generator.RegisterProvider("openai", func(cfg *config.GeneratorProviderConfig) (port.StructuredGenerator, error) {
		return openai.NewGenerator(cfg), nil
	})
	generator.RegisterProvider("gemini", func(cfg *config.GeneratorProviderConfig) (port.StructuredGenerator, error) {
		return gemini.NewGenerator(cfg), nil
	})
	generator.RegisterProvider("claude", func(cfg *config.GeneratorProviderConfig) (port.StructuredGenerator, error) {
		return claude.NewGenerator(cfg), nil
	})
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	catalogRepo := postgres.NewCatalogRepo(db)

	storage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	registerProviders()
	gen, err := generator.NewGenerator(&cfg.Generator.Primary)
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}
	if secondary := cfg.Generator.SecondaryConfig(); secondary != nil {
		secondaryGen, err := generator.NewGenerator(secondary)
		if err != nil {
			return fmt.Errorf("failed to initialize secondary generator: %w", err)
		}
		gen = generator.NewFallbackGenerator(
			[]port.StructuredGenerator{gen, secondaryGen},
			[]string{cfg.Generator.Primary.Provider, secondary.Provider},
		)
	}

	exemplars, err := pipeline.LoadExemplars(cfg.Extract.ExemplarDir)
	if err != nil {
		return fmt.Errorf("failed to load exemplars: %w", err)
	}
	if len(exemplars) > 0 {
		log.Printf("loaded %d few-shot exemplars from %s", len(exemplars), cfg.Extract.ExemplarDir)
	}

	pl := pipeline.New(
		pipeline.NewExtractor(gen, exemplars),
		pipeline.NewComparer(gen),
	)

	scanSvc := service.NewScanService(pl, storage, catalogRepo, &cfg.S3)
	catalogSvc := service.NewCatalogService(catalogRepo)

	scanH := handler.NewScanHandler(scanSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(scanH, catalogH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
