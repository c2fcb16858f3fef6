package evidence

import (
	"context"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"reliefdocs/internal/catalog"
	"reliefdocs/internal/domain"
	"reliefdocs/internal/port"
)

const (
	generalSitePhotoLabel = "General site photo"
	visualPrefix          = "Visual: "
)

// Extractor runs the two structured extraction passes: one batched call for
// documents and one call per photo.
type Extractor struct {
	gateway          port.ModelGateway
	catalog          *catalog.Catalog
	maxRetries       int
	photoConcurrency int
}

// NewExtractor creates an Extractor. photoConcurrency bounds in-flight photo calls.
func NewExtractor(gateway port.ModelGateway, cat *catalog.Catalog, maxRetries, photoConcurrency int) *Extractor {
	if photoConcurrency <= 0 {
		photoConcurrency = 1
	}
	return &Extractor{
		gateway:          gateway,
		catalog:          cat,
		maxRetries:       maxRetries,
		photoConcurrency: photoConcurrency,
	}
}

// ExtractExpenses extracts expense items from all documents in one call.
// Items that cite a file outside docs or carry a negative amount are dropped.
// A failed call yields no items.
func (e *Extractor) ExtractExpenses(ctx context.Context, docs []domain.EvidenceFile, ocrByFile map[string]string, ectx domain.EvidenceContext) []domain.ExpenseItem {
	items := []domain.ExpenseItem{}
	if len(docs) == 0 {
		return items
	}

	attachments := make([]port.Attachment, 0, len(docs))
	known := make(map[string]bool, len(docs))
	for _, f := range docs {
		known[f.Filename] = true
		attachments = append(attachments, port.Attachment{Filename: f.Filename, Data: f.Content, MimeType: f.MimeType})
	}

	var resp expenseOutput
	err := e.gateway.CompleteStructured(ctx, port.StructuredRequest{
		SchemaName:  expenseSchemaName,
		Schema:      expenseSchema,
		Prompt:      expensePrompt(e.catalog, docs, ocrByFile, ectx),
		Attachments: attachments,
		MaxRetries:  e.maxRetries,
	}, &resp)
	if err != nil {
		log.Printf("evidence.Extractor: expense extraction failed for %d document(s): %v", len(docs), err)
		return items
	}

	for _, raw := range resp.ExpenseItems {
		if !known[raw.SourceFile] {
			log.Printf("evidence.Extractor: dropping expense citing unknown file %q", raw.SourceFile)
			continue
		}
		if raw.Amount < 0 {
			log.Printf("evidence.Extractor: dropping expense with negative amount %.2f from %s", raw.Amount, raw.SourceFile)
			continue
		}
		items = append(items, domain.ExpenseItem{
			Vendor:       strings.TrimSpace(raw.Vendor),
			Date:         strings.TrimSpace(raw.Date),
			Amount:       raw.Amount,
			Category:     domain.ParseExpenseCategory(raw.Category),
			Confidence:   domain.ParseConfidence(raw.Confidence),
			SourceFile:   raw.SourceFile,
			SourceText:   raw.SourceText,
			DocumentType: strings.TrimSpace(raw.DocumentType),
		})
	}
	return items
}

// ExtractDamage analyses each photo in its own call, bounded by the configured
// concurrency. Claims are returned grouped by photo in input order. A failed
// call contributes nothing for that photo and does not affect the others.
func (e *Extractor) ExtractDamage(ctx context.Context, photos []domain.EvidenceFile, ectx domain.EvidenceContext) []domain.DamageClaim {
	perPhoto := make([][]domain.DamageClaim, len(photos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.photoConcurrency)
	for i, photo := range photos {
		i, photo := i, photo
		g.Go(func() error {
			perPhoto[i] = e.extractPhoto(gctx, photo, ectx)
			return nil
		})
	}
	_ = g.Wait()

	claims := []domain.DamageClaim{}
	for _, c := range perPhoto {
		claims = append(claims, c...)
	}
	return claims
}

func (e *Extractor) extractPhoto(ctx context.Context, photo domain.EvidenceFile, ectx domain.EvidenceContext) []domain.DamageClaim {
	var resp damageOutput
	err := e.gateway.CompleteStructured(ctx, port.StructuredRequest{
		SchemaName: damageSchemaName,
		Schema:     damageSchema,
		Prompt:     damagePrompt(photo, ectx),
		Attachments: []port.Attachment{
			{Filename: photo.Filename, Data: photo.Content, MimeType: photo.MimeType},
		},
		MaxRetries: e.maxRetries,
	}, &resp)
	if err != nil {
		log.Printf("evidence.Extractor: damage extraction failed for %s: %v", photo.Filename, err)
		return nil
	}

	if len(resp.DamageClaims) == 0 {
		return []domain.DamageClaim{{
			Label:      generalSitePhotoLabel,
			Detail:     "No specific damage identified in this photo.",
			Confidence: domain.ConfidenceMedium,
			SourceFile: photo.Filename,
			SourceText: visualPrefix + "no visible damage",
		}}
	}

	claims := make([]domain.DamageClaim, 0, len(resp.DamageClaims))
	for _, raw := range resp.DamageClaims {
		if raw.SourceFile != "" && raw.SourceFile != photo.Filename {
			log.Printf("evidence.Extractor: rebinding claim from %q to %s", raw.SourceFile, photo.Filename)
		}
		sourceText := strings.TrimSpace(raw.SourceText)
		if sourceText == "" {
			sourceText = visualPrefix + strings.TrimSpace(raw.Detail)
		}
		claims = append(claims, domain.DamageClaim{
			Label:      strings.TrimSpace(raw.Label),
			Detail:     strings.TrimSpace(raw.Detail),
			Confidence: domain.ParseConfidence(raw.Confidence),
			SourceFile: photo.Filename,
			SourceText: sourceText,
			DamageType: strings.TrimSpace(raw.DamageType),
			Severity:   strings.TrimSpace(raw.Severity),
		})
	}
	return claims
}
