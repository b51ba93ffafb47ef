// Package extractor turns uploaded file bytes into plain text.
//
// Extraction never fails: decoder errors, empty output, and legacy formats
// resolve to placeholder text explaining what happened, so a single bad file
// in a batch does not abort the rest.
package extractor

import (
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/study-lab/internal/validator"
)

// DefaultConcurrency bounds parallel decoding in ExtractAll.
const DefaultConcurrency = 4

// Outcome describes how a Result's text was produced.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeFallback    Outcome = "fallback"
	OutcomeUnsupported Outcome = "unsupported"
)

// File is a named byte payload with its declared MIME type.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is the text extracted from one File.
type Result struct {
	Name        string  `json:"name"`
	ContentType string  `json:"content_type"`
	Text        string  `json:"text"`
	Outcome     Outcome `json:"outcome"`
	PageCount   *int    `json:"page_count,omitempty"`
}

// Decoder converts a document's bytes to plain text.
type Decoder interface {
	Decode(data []byte) (string, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(data []byte) (string, error)

func (f DecoderFunc) Decode(data []byte) (string, error) {
	return f(data)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDecoder overrides the decoder used for mediaType.
func WithDecoder(mediaType string, d Decoder) Option {
	return func(e *Extractor) {
		e.decoders[mediaType] = d
	}
}

// WithConcurrency sets the ExtractAll worker limit. Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// Extractor dispatches files to format-specific decoders.
type Extractor struct {
	decoders    map[string]Decoder
	concurrency int
	logger      *slog.Logger
}

// New creates an Extractor with the PDF and DOCX decoders installed.
func New(logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		decoders: map[string]Decoder{
			validator.TypePDF:  DecoderFunc(decodePDF),
			validator.TypeDOCX: DecoderFunc(decodeDOCX),
		},
		concurrency: DefaultConcurrency,
		logger:      logger.With("system", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract produces the text of f. It never returns empty-handed on failure:
// the Result carries a placeholder explaining why the content is missing.
func (e *Extractor) Extract(f File) Result {
	mediaType := e.resolveType(f)
	res := Result{Name: f.Name, ContentType: mediaType}

	switch mediaType {
	case validator.TypeText:
		res.Text = decodeText(f.Data)
		res.Outcome = OutcomeSuccess

	case validator.TypePDF:
		res.PageCount = pageCount(f.Data)
		e.decode(&res, f, pdfEmpty, pdfFailed)

	case validator.TypeDOCX:
		e.decode(&res, f, docxEmpty, docxFailed)

	case validator.TypeDOC:
		res.Text = legacyDoc(f.Name)
		res.Outcome = OutcomeFallback

	default:
		if utf8.Valid(f.Data) {
			res.Text = decodeText(f.Data)
			res.Outcome = OutcomeSuccess
		} else {
			res.Text = unsupported(f.Name, mediaType)
			res.Outcome = OutcomeUnsupported
		}
	}

	return res
}

// ExtractAll extracts files concurrently and returns results in submission order.
func (e *Extractor) ExtractAll(files []File) []Result {
	results := make([]Result, len(files))

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, f := range files {
		g.Go(func() error {
			results[i] = e.Extract(f)
			return nil
		})
	}

	g.Wait()
	return results
}

func (e *Extractor) decode(res *Result, f File, empty, failed func(string) string) {
	d, ok := e.decoders[res.ContentType]
	if !ok {
		res.Text = unsupported(f.Name, res.ContentType)
		res.Outcome = OutcomeUnsupported
		return
	}

	text, err := safeDecode(d, f.Data)
	switch {
	case err != nil:
		e.logger.Warn("text extraction failed", "file", f.Name, "content_type", res.ContentType, "error", err)
		res.Text = failed(f.Name)
		res.Outcome = OutcomeFallback
	case strings.TrimSpace(text) == "":
		e.logger.Warn("text extraction produced no text", "file", f.Name, "content_type", res.ContentType)
		res.Text = empty(f.Name)
		res.Outcome = OutcomeFallback
	default:
		res.Text = text
		res.Outcome = OutcomeSuccess
	}
}

// resolveType prefers the declared type, then the file suffix, then content sniffing.
func (e *Extractor) resolveType(f File) string {
	declared := validator.MediaType(f.ContentType)
	if known(declared) {
		return declared
	}

	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".txt":
		return validator.TypeText
	case ".pdf":
		return validator.TypePDF
	case ".docx":
		return validator.TypeDOCX
	case ".doc":
		return validator.TypeDOC
	}

	if declared == "" || declared == "application/octet-stream" {
		return validator.MediaType(mimetype.Detect(f.Data).String())
	}
	return declared
}

func known(mediaType string) bool {
	switch mediaType {
	case validator.TypeText, validator.TypePDF, validator.TypeDOCX, validator.TypeDOC:
		return true
	}
	return false
}

func decodeText(data []byte) string {
	s := strings.TrimPrefix(string(data), "\ufeff")
	return strings.ToValidUTF8(s, "\ufffd")
}
