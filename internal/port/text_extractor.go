package port

import "context"

// TextExtractor converts one uploaded file into best-effort plain text.
// Implementations never fail; any problem yields the empty string.
type TextExtractor interface {
	ExtractText(ctx context.Context, filename string, content []byte, mimeType string) string
}
