package evidence

import (
	"context"
	"log"

	"reliefdocs/internal/domain"
	"reliefdocs/internal/port"
)

// Classifier decides whether each uploaded file is a text document or a photo.
type Classifier struct {
	gateway    port.ModelGateway
	maxRetries int
}

// NewClassifier creates a Classifier backed by gateway.
func NewClassifier(gateway port.ModelGateway, maxRetries int) *Classifier {
	return &Classifier{gateway: gateway, maxRetries: maxRetries}
}

// Classify returns exactly one classification per input file, in input order.
// Non-image files are documents without a model call. Images are classified in
// a single batched call and matched back by filename; anything the model omits
// or a failed call leaves the file as a document.
func (c *Classifier) Classify(ctx context.Context, files []domain.EvidenceFile) []domain.FileClassification {
	out := make([]domain.FileClassification, len(files))
	var images []domain.EvidenceFile
	for i, f := range files {
		out[i] = domain.FileClassification{Filename: f.Filename, Kind: domain.FileKindDocument}
		if f.IsImage() {
			images = append(images, f)
		}
	}
	if len(images) == 0 {
		return out
	}

	filenames := make([]string, len(images))
	attachments := make([]port.Attachment, len(images))
	for i, f := range images {
		filenames[i] = f.Filename
		attachments[i] = port.Attachment{Filename: f.Filename, Data: f.Content, MimeType: f.MimeType}
	}

	var resp classificationOutput
	err := c.gateway.CompleteStructured(ctx, port.StructuredRequest{
		SchemaName:  classificationSchemaName,
		Schema:      classificationSchema,
		Prompt:      classificationPrompt(filenames),
		Attachments: attachments,
		MaxRetries:  c.maxRetries,
	}, &resp)
	if err != nil {
		log.Printf("evidence.Classifier: classification failed, defaulting %d image(s) to document: %v", len(images), err)
		return out
	}

	kinds := make(map[string]domain.FileKind, len(resp.Classifications))
	for _, cl := range resp.Classifications {
		if _, seen := kinds[cl.Filename]; seen {
			continue
		}
		kinds[cl.Filename] = domain.ParseFileKind(cl.Kind)
	}

	for i, f := range files {
		if !f.IsImage() {
			continue
		}
		kind, ok := kinds[f.Filename]
		if !ok {
			log.Printf("evidence.Classifier: no classification returned for %s, defaulting to document", f.Filename)
			continue
		}
		out[i].Kind = kind
	}
	return out
}
