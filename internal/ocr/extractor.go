// Package ocr turns uploaded evidence files into best-effort plain text.
// Images go through tesseract after light preprocessing; PDFs are rasterized
// page by page with pdftoppm and OCR'd, falling back to the embedded text layer.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	_ "golang.org/x/image/webp" // registers the webp decoder with image.Decode

	"reliefdocs/internal/config"
	"reliefdocs/internal/domain"
)

// commandRunner executes an external tool, feeding stdin and returning stdout.
type commandRunner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// Extractor implements port.TextExtractor.
type Extractor struct {
	cfg       config.OCRConfig
	run       commandRunner
	lookPath  func(string) (string, error)
	pageCount func(data []byte) (int, error)

	detectOnce    sync.Once
	tesseractOK   bool
	rasterizerOK  bool
	tesseractPath string
	rasterizePath string
}

// NewExtractor creates an Extractor from OCR settings.
func NewExtractor(cfg config.OCRConfig) *Extractor {
	return &Extractor{
		cfg:       cfg,
		run:       execRunner,
		lookPath:  exec.LookPath,
		pageCount: pdfPageCount,
	}
}

// ExtractText never fails: missing tools, corrupt input and panics all yield "".
func (e *Extractor) ExtractText(ctx context.Context, filename string, content []byte, mimeType string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ocr.Extractor: panic extracting %s: %v", filename, r)
			text = ""
		}
	}()

	if len(content) == 0 {
		return ""
	}
	e.detectTools()

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case domain.IsImageContentType(mimeType):
		text = e.extractImage(ctx, filename, content)
	case mimeType == domain.MIMEPDF:
		text = e.extractPDF(ctx, filename, content)
	default:
		log.Printf("ocr.Extractor: unsupported content type %q for %s", mimeType, filename)
		return ""
	}
	return strings.TrimSpace(text)
}

// ToolStatus reports which external OCR tools were found.
type ToolStatus struct {
	Tesseract  bool `json:"tesseract" yaml:"tesseract"`
	Rasterizer bool `json:"pdf_rasterizer" yaml:"pdf_rasterizer"`
}

// Status is "ok" when image OCR is possible and "degraded" otherwise.
// PDFs still yield their text layer without a rasterizer.
func (s ToolStatus) Status() string {
	if s.Tesseract {
		return "ok"
	}
	return "degraded"
}

// Available looks up the external tools (once) and reports what was found.
func (e *Extractor) Available() ToolStatus {
	e.detectTools()
	return ToolStatus{Tesseract: e.tesseractOK, Rasterizer: e.rasterizerOK}
}

func (e *Extractor) detectTools() {
	e.detectOnce.Do(func() {
		e.tesseractPath = orDefault(e.cfg.TesseractPath, "tesseract")
		e.rasterizePath = orDefault(e.cfg.RasterizerPath, "pdftoppm")
		if p, err := e.lookPath(e.tesseractPath); err == nil {
			e.tesseractPath = p
			e.tesseractOK = true
		} else {
			log.Printf("ocr.Extractor: tesseract not available (%v); image OCR disabled", err)
		}
		if p, err := e.lookPath(e.rasterizePath); err == nil {
			e.rasterizePath = p
			e.rasterizerOK = true
		} else {
			log.Printf("ocr.Extractor: pdf rasterizer not available (%v); using PDF text layer only", err)
		}
	})
}

func (e *Extractor) extractImage(ctx context.Context, filename string, content []byte) string {
	if !e.tesseractOK {
		return ""
	}
	input := content
	if prepared, err := e.prepareImage(content); err == nil {
		input = prepared
	} else {
		log.Printf("ocr.Extractor: preprocessing %s failed, using original bytes: %v", filename, err)
	}
	text, err := e.tesseract(ctx, input)
	if err != nil {
		log.Printf("ocr.Extractor: tesseract failed for %s: %v", filename, err)
		return ""
	}
	return text
}

// prepareImage re-encodes the image as PNG, downscaling oversized images and
// optionally boosting contrast for receipts.
func (e *Extractor) prepareImage(content []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = fitWithin(img, e.cfg.MaxDimension)
	if e.cfg.Preprocess {
		img = imaging.Grayscale(img)
		img = imaging.Sharpen(img, 1.0)
		img = imaging.AdjustContrast(img, 20)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

func fitWithin(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDimension && b.Dy() <= maxDimension {
		return img
	}
	if b.Dx() >= b.Dy() {
		return imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
}

func (e *Extractor) extractPDF(ctx context.Context, filename string, content []byte) string {
	if e.tesseractOK && e.rasterizerOK {
		text, err := e.ocrPDF(ctx, content)
		if err != nil {
			log.Printf("ocr.Extractor: pdf OCR failed for %s: %v", filename, err)
		}
		if strings.TrimSpace(text) != "" {
			return text
		}
	}
	return textLayer(content)
}

// ocrPDF renders each page to PNG and OCRs it. Pages with no text are
// skipped; the rest are joined as "[Page N]\n<text>" blocks.
func (e *Extractor) ocrPDF(ctx context.Context, content []byte) (string, error) {
	pages, err := e.pageCount(content)
	if err != nil {
		return "", fmt.Errorf("counting pages: %w", err)
	}

	dir, err := os.MkdirTemp("", "reliefdocs-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	pdfPath := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(pdfPath, content, 0o600); err != nil {
		return "", fmt.Errorf("writing temp pdf: %w", err)
	}

	dpi := e.cfg.DPI
	if dpi <= 0 {
		dpi = 150
	}

	var blocks []string
	for page := 1; page <= pages; page++ {
		if ctx.Err() != nil {
			return strings.Join(blocks, "\n\n"), ctx.Err()
		}

		prefix := filepath.Join(dir, fmt.Sprintf("page-%d", page))
		_, err := e.runTool(ctx, nil, e.rasterizePath,
			"-png",
			"-r", fmt.Sprintf("%d", dpi),
			"-f", fmt.Sprintf("%d", page),
			"-l", fmt.Sprintf("%d", page),
			"-singlefile",
			pdfPath,
			prefix,
		)
		if err != nil {
			log.Printf("ocr.Extractor: rasterizing page %d failed: %v", page, err)
			continue
		}

		png, err := os.ReadFile(prefix + ".png")
		if err != nil {
			log.Printf("ocr.Extractor: rasterizer did not produce page %d: %v", page, err)
			continue
		}

		text, err := e.tesseract(ctx, png)
		if err != nil {
			log.Printf("ocr.Extractor: tesseract failed on page %d: %v", page, err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[Page %d]\n%s", page, text))
	}

	return strings.Join(blocks, "\n\n"), nil
}

func (e *Extractor) tesseract(ctx context.Context, img []byte) (string, error) {
	lang := orDefault(e.cfg.Language, "eng")
	out, err := e.runTool(ctx, img, e.tesseractPath, "stdin", "stdout", "-l", lang)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// runTool bounds every external invocation by the configured timeout.
func (e *Extractor) runTool(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.commandTimeout())
	defer cancel()
	return e.run(ctx, stdin, name, args...)
}

func (e *Extractor) commandTimeout() time.Duration {
	if e.cfg.Timeout <= 0 {
		return 60 * time.Second
	}
	return e.cfg.Timeout
}

// textLayer reads the embedded text of a PDF. Scanned PDFs have none.
func textLayer(content []byte) string {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return string(out)
}

func pdfPageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), nil)
}

func execRunner(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w (stderr: %s)", filepath.Base(name), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
