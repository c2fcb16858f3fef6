package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reliefdocs/internal/catalog"
	"reliefdocs/internal/config"
	"reliefdocs/internal/domain"
	"reliefdocs/internal/evidence"
	"reliefdocs/internal/port"
)

// EvidenceService defines the evidence extraction contract.
type EvidenceService interface {
	Extract(ctx context.Context, files []domain.EvidenceFile, ectx domain.EvidenceContext) (*domain.ExtractionResult, error)
	DamageNarrative(ctx context.Context, claims []domain.DamageClaim, ectx domain.EvidenceContext) (string, error)
}

type evidenceService struct {
	catalog     *catalog.Catalog
	ocr         port.TextExtractor
	classifier  *evidence.Classifier
	extractor   *evidence.Extractor
	narrator    *evidence.Narrator
	metrics     port.PipelineMetrics
	concurrency int
}

// Option configures optional evidenceService collaborators.
type Option func(*evidenceService)

// WithMetrics records per-run outcomes and record counts on m.
func WithMetrics(m port.PipelineMetrics) Option {
	return func(s *evidenceService) { s.metrics = m }
}

// NewEvidenceService creates a new EvidenceService implementation.
func NewEvidenceService(
	cat *catalog.Catalog,
	gateway port.ModelGateway,
	textExtractor port.TextExtractor,
	cfg config.EvidenceConfig,
	opts ...Option,
) EvidenceService {
	concurrency := cfg.PhotoConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	s := &evidenceService{
		catalog:     cat,
		ocr:         textExtractor,
		classifier:  evidence.NewClassifier(gateway, cfg.MaxRetries),
		extractor:   evidence.NewExtractor(gateway, cat, cfg.MaxRetries, concurrency),
		narrator:    evidence.NewNarrator(gateway),
		concurrency: concurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract runs the full pipeline: OCR, classification, expense and damage
// extraction, OCR anchoring, rename map and missing-evidence detection.
// Every dependency failure degrades instead of failing; the only error
// returned is ctx's, and then no partial result is returned.
func (s *evidenceService) Extract(ctx context.Context, files []domain.EvidenceFile, ectx domain.EvidenceContext) (*domain.ExtractionResult, error) {
	start := time.Now()
	result, err := s.extract(ctx, files, ectx)
	if s.metrics != nil {
		if err != nil {
			s.metrics.ObserveExtraction(time.Since(start), port.OutcomeCancelled, 0, 0, 0)
		} else {
			s.metrics.ObserveExtraction(time.Since(start), port.OutcomeOK,
				len(result.ExpenseItems), len(result.DamageClaims), len(result.MissingEvidence))
		}
	}
	return result, err
}

func (s *evidenceService) extract(ctx context.Context, files []domain.EvidenceFile, ectx domain.EvidenceContext) (*domain.ExtractionResult, error) {
	result := domain.NewExtractionResult()
	if len(files) == 0 {
		result.MissingEvidence = evidence.AllMissing(s.catalog)
		return result, nil
	}

	runID := domain.RequestIDFromContext(ctx)
	if runID == "" {
		runID = uuid.New().String()
	}
	start := time.Now()
	log.Printf("[%s] service.EvidenceService: extracting %d file(s)", runID, len(files))

	filenames := make([]string, len(files))
	for i, f := range files {
		filenames[i] = f.Filename
	}

	ocrByFile := s.ocrAll(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classes := s.classifier.Classify(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var docs, photos []domain.EvidenceFile
	for i, f := range files {
		if classes[i].Kind == domain.FileKindPhoto {
			photos = append(photos, f)
		} else {
			docs = append(docs, f)
		}
	}
	log.Printf("[%s] service.EvidenceService: %d document(s), %d photo(s)", runID, len(docs), len(photos))

	var expenses []domain.ExpenseItem
	var claims []domain.DamageClaim
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		expenses = s.extractor.ExtractExpenses(gctx, docs, ocrByFile, ectx)
		return nil
	})
	g.Go(func() error {
		claims = s.extractor.ExtractDamage(gctx, photos, ectx)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	expenses = evidence.AnchorAll(expenses, ocrByFile)

	result.ExpenseItems = expenses
	result.DamageClaims = claims
	result.RenameMap = evidence.BuildRenameMap(filenames, expenses, claims)
	result.MissingEvidence = evidence.DetectMissing(s.catalog, expenses, claims, filenames)

	log.Printf("[%s] service.EvidenceService: done in %s: %d expense(s), %d damage claim(s), %d missing",
		runID, time.Since(start).Round(time.Millisecond), len(result.ExpenseItems), len(result.DamageClaims), len(result.MissingEvidence))
	return result, nil
}

// ocrAll extracts text from every file with bounded concurrency.
func (s *evidenceService) ocrAll(ctx context.Context, files []domain.EvidenceFile) map[string]string {
	texts := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			texts[i] = s.ocr.ExtractText(gctx, f.Filename, f.Content, f.MimeType)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]string, len(files))
	for i, f := range files {
		if _, dup := out[f.Filename]; dup && texts[i] == "" {
			continue
		}
		out[f.Filename] = texts[i]
	}
	return out
}

// DamageNarrative summarises damage claims as a paragraph for letters.
func (s *evidenceService) DamageNarrative(ctx context.Context, claims []domain.DamageClaim, ectx domain.EvidenceContext) (string, error) {
	return s.narrator.Narrate(ctx, claims, ectx)
}
