// Package validator rejects uploaded files by size, declared type, and name
// before any of their content is read.
package validator

import (
	"fmt"
	"mime"
	"strings"

	"github.com/docker/go-units"
)

// MIME types accepted by DefaultRules.
const (
	TypeText = "text/plain"
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeDOC  = "application/msword"
)

// MaxSize is the default per-file size cap.
const MaxSize = 10 * units.MiB

// File is the metadata of an uploaded file.
type File struct {
	Name        string
	ContentType string
	Size        int64
}

// Rules configures a Validator.
type Rules struct {
	MaxSize           int64
	AllowedTypes      []string
	BlockedExtensions []string
}

// DefaultRules returns a 10MiB cap, the text/PDF/DOCX/DOC allow-list,
// and the executable and script extension blocklist.
func DefaultRules() Rules {
	return Rules{
		MaxSize:           MaxSize,
		AllowedTypes:      []string{TypeText, TypePDF, TypeDOCX, TypeDOC},
		BlockedExtensions: []string{".exe", ".bat", ".cmd", ".sh", ".dll", ".scr", ".js", ".vbs"},
	}
}

// Validator checks file metadata against Rules.
type Validator struct {
	maxSize int64
	allowed map[string]struct{}
	blocked []string
}

// New creates a Validator. Zero-valued fields in rules fall back to DefaultRules.
func New(rules Rules) *Validator {
	defaults := DefaultRules()
	if rules.MaxSize <= 0 {
		rules.MaxSize = defaults.MaxSize
	}
	if len(rules.AllowedTypes) == 0 {
		rules.AllowedTypes = defaults.AllowedTypes
	}
	if rules.BlockedExtensions == nil {
		rules.BlockedExtensions = defaults.BlockedExtensions
	}

	allowed := make(map[string]struct{}, len(rules.AllowedTypes))
	for _, t := range rules.AllowedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}

	blocked := make([]string, len(rules.BlockedExtensions))
	for i, ext := range rules.BlockedExtensions {
		blocked[i] = strings.ToLower(ext)
	}

	return &Validator{
		maxSize: rules.MaxSize,
		allowed: allowed,
		blocked: blocked,
	}
}

// Validate runs the size, type, and name checks in order and returns the first failure
// as a *FileError. A nil result means the file may be processed.
func (v *Validator) Validate(f File) error {
	if f.Size > v.maxSize {
		return &FileError{
			Name: f.Name,
			Err:  fmt.Errorf("%w of %s", ErrSizeExceeded, units.BytesSize(float64(v.maxSize))),
		}
	}

	if !v.Allowed(f.ContentType) {
		return &FileError{
			Name: f.Name,
			Err:  fmt.Errorf("%w: %q", ErrUnsupportedType, f.ContentType),
		}
	}

	if v.suspicious(f.Name) {
		return &FileError{Name: f.Name, Err: ErrSuspiciousFile}
	}

	return nil
}

// Allowed reports whether contentType, ignoring parameters, is on the allow-list.
func (v *Validator) Allowed(contentType string) bool {
	_, ok := v.allowed[MediaType(contentType)]
	return ok
}

func (v *Validator) suspicious(name string) bool {
	if strings.Count(name, ".") > 1 {
		return true
	}

	lower := strings.ToLower(name)
	for _, ext := range v.blocked {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// MediaType returns the lower-cased media type of contentType without parameters.
func MediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
