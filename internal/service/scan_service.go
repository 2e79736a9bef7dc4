package service

import (
	"context"
	"fmt"
	"log"

	"facturio/internal/catalog"
	"facturio/internal/config"
	"facturio/internal/domain"
	"facturio/internal/normalizer"
	"facturio/internal/pipeline"
	"facturio/internal/port"
)

// ScanInput is the DTO for scanning an uploaded document.
type ScanInput struct {
	FileName string
	Data     []byte
	// RawCatalog is the request's catalog payload (a JSON object keyed by
	// item identifier). When empty, the catalog is loaded from the
	// repository instead.
	RawCatalog []byte
}

// ScanService runs the full extraction-and-matching pipeline over a source
// document.
type ScanService interface {
	Scan(ctx context.Context, input ScanInput) (*domain.PipelineState, error)
	ScanStored(ctx context.Context, key string, rawCatalog []byte) (*domain.PipelineState, error)
}

type scanService struct {
	pipeline    *pipeline.Pipeline
	storage     port.ObjectStorage
	catalogRepo port.CatalogRepository
	s3cfg       *config.S3Config
}

// NewScanService creates a ScanService. storage and catalogRepo may be nil
// when the corresponding sources are not configured.
func NewScanService(
	pl *pipeline.Pipeline,
	storage port.ObjectStorage,
	catalogRepo port.CatalogRepository,
	s3cfg *config.S3Config,
) ScanService {
	return &scanService{
		pipeline:    pl,
		storage:     storage,
		catalogRepo: catalogRepo,
		s3cfg:       s3cfg,
	}
}

func (s *scanService) Scan(ctx context.Context, input ScanInput) (*domain.PipelineState, error) {
	if input.FileName == "" || len(input.Data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	doc, err := normalizer.Normalize(input.FileName, input.Data)
	if err != nil {
		return nil, err
	}

	items, err := s.resolveCatalog(ctx, input.RawCatalog)
	if err != nil {
		return nil, err
	}

	log.Printf("scanService.Scan: running pipeline for %s (%d catalog items)", input.FileName, len(items))
	return s.pipeline.Run(ctx, doc, items)
}

func (s *scanService) ScanStored(ctx context.Context, key string, rawCatalog []byte) (*domain.PipelineState, error) {
	if key == "" {
		return nil, domain.ErrEmptyDocument
	}
	if s.storage == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	data, err := s.storage.Download(ctx, s.s3cfg.Bucket, key)
	if err != nil {
		return nil, err
	}

	return s.Scan(ctx, ScanInput{FileName: key, Data: data, RawCatalog: rawCatalog})
}

// resolveCatalog formats the request's raw catalog, falling back to the
// repository when the request carries none.
func (s *scanService) resolveCatalog(ctx context.Context, raw []byte) ([]domain.CatalogItem, error) {
	if len(raw) > 0 {
		records, err := catalog.DecodeRaw(raw)
		if err != nil {
			return nil, err
		}
		return catalog.Format(records), nil
	}

	if s.catalogRepo == nil {
		return []domain.CatalogItem{}, nil
	}
	items, err := s.catalogRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return items, nil
}
