// Package extract turns uploaded resume documents into plain text.
//
// Formats are served by handlers registered per MIME type and file extension.
// Extraction is fail-soft: the Extractor never returns an error, it logs the
// problem and yields an empty string so scoring can continue.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	MIMEPDF   = "application/pdf"
	MIMEDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPlain = "text/plain"

	// DefaultMaxBytes bounds how much of a document is read.
	DefaultMaxBytes int64 = 10 << 20
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrTooLarge          = errors.New("document exceeds size limit")
)

// Document is a caller-owned resume file.
type Document struct {
	// Name is the original file name; only its extension is used.
	Name string
	// MIME is the declared content type, parameters are ignored.
	MIME   string
	Reader io.Reader
}

// Handler extracts text from the raw bytes of one document format.
type Handler interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, data []byte) (string, error)

func (f HandlerFunc) Extract(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

// Registry maps MIME types and file extensions to handlers.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string]Handler
	byExt  map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string]Handler),
		byExt:  make(map[string]Handler),
	}
}

// DefaultRegistry returns a registry serving PDF, DOCX and plain text.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(HandlerFunc(extractPDF), []string{MIMEPDF}, []string{".pdf"})
	r.Register(HandlerFunc(extractDOCX), []string{MIMEDOCX}, []string{".docx"})
	r.Register(HandlerFunc(extractPlain), []string{MIMEPlain, "text/markdown"}, []string{".txt", ".md"})
	return r
}

// Register binds h to the given MIME types and extensions, replacing earlier bindings.
func (r *Registry) Register(h Handler, mimeTypes []string, exts []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range mimeTypes {
		if m = normalizeMIME(m); m != "" {
			r.byMIME[m] = h
		}
	}
	for _, ext := range exts {
		if ext = normalizeExt(ext); ext != "" {
			r.byExt[ext] = h
		}
	}
}

// Lookup resolves a handler by declared MIME type, then extension, then by
// sniffing the content.
func (r *Registry) Lookup(doc Document, data []byte) (Handler, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m := normalizeMIME(doc.MIME); m != "" {
		if h, ok := r.byMIME[m]; ok {
			return h, m, nil
		}
	}

	if ext := normalizeExt(filepath.Ext(doc.Name)); ext != "" {
		if h, ok := r.byExt[ext]; ok {
			return h, ext, nil
		}
	}

	for detected := mimetype.Detect(data); detected != nil; detected = detected.Parent() {
		if h, ok := r.byMIME[normalizeMIME(detected.String())]; ok {
			return h, detected.String(), nil
		}
	}

	return nil, "", fmt.Errorf("%w: name=%q mime=%q", ErrUnsupportedFormat, doc.Name, doc.MIME)
}

// Extractor reads documents and dispatches them to registered handlers.
type Extractor struct {
	registry *Registry
	maxBytes int64
	logger   *zap.Logger
}

func NewExtractor(registry *Registry, maxBytes int64, logger *zap.Logger) *Extractor {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{registry: registry, maxBytes: maxBytes, logger: logger}
}

// ExtractText returns the document text, or "" when it cannot be read or parsed.
func (e *Extractor) ExtractText(ctx context.Context, doc Document) string {
	text, err := e.extract(ctx, doc)
	if err != nil {
		e.logger.Warn("resume text extraction failed",
			zap.String("file", doc.Name),
			zap.String("mime", doc.MIME),
			zap.Error(err),
		)
		return ""
	}

	e.logger.Debug("resume text extracted",
		zap.String("file", doc.Name),
		zap.Int("text_length", len(text)),
	)

	return text
}

func (e *Extractor) extract(ctx context.Context, doc Document) (text string, err error) {
	if doc.Reader == nil {
		return "", errors.New("document has no content")
	}

	data, err := io.ReadAll(io.LimitReader(doc.Reader, e.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, e.maxBytes)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", errors.New("document is empty")
	}

	handler, format, err := e.registry.Lookup(doc, data)
	if err != nil {
		return "", err
	}

	// third-party parsers panic on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%s parser panic: %v", format, r)
		}
	}()

	text, err = handler.Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", format, err)
	}

	return strings.TrimSpace(text), nil
}

func normalizeMIME(m string) string {
	m = strings.TrimSpace(m)
	if m == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(m); err == nil {
		return parsed
	}
	return strings.ToLower(m)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
