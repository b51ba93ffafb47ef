// Package ingest turns uploaded files or pasted text into stored notes.
//
// A request is rate limited, validated, extracted, sanitized, and moderated as a
// whole before anything is persisted. Summaries and activity records are added
// afterwards on a best-effort basis and never fail the request.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/study-lab/internal/activities"
	"github.com/JaimeStill/study-lab/internal/extractor"
	"github.com/JaimeStill/study-lab/internal/moderation"
	"github.com/JaimeStill/study-lab/internal/notes"
	"github.com/JaimeStill/study-lab/internal/sanitizer"
	"github.com/JaimeStill/study-lab/internal/validator"
)

const separator = "\n\n"

// Limiter admits or denies an ingestion attempt for a requester.
type Limiter interface {
	CheckAndRecord(ctx context.Context, requesterID string) error
}

// Moderator judges aggregated content. Screen sees the aggregate before
// sanitizing and Moderate sees exactly what will be stored.
type Moderator interface {
	Screen(text string) moderation.Verdict
	Moderate(ctx context.Context, text string) moderation.Verdict
}

// Summarizer produces an optional summary of stored content.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}

// Deps holds the collaborators of a Pipeline.
// Summarizer and Activities are optional.
type Deps struct {
	Limiter    Limiter
	Validator  *validator.Validator
	Extractor  *extractor.Extractor
	Moderator  Moderator
	Summarizer Summarizer
	Notes      notes.System
	Activities activities.System
	Logger     *slog.Logger
}

// Pipeline runs ingestion requests.
type Pipeline struct {
	limiter    Limiter
	validator  *validator.Validator
	extractor  *extractor.Extractor
	moderator  Moderator
	summarizer Summarizer
	notes      notes.System
	activities activities.System
	logger     *slog.Logger
}

// New creates a Pipeline from deps.
func New(deps Deps) *Pipeline {
	return &Pipeline{
		limiter:    deps.Limiter,
		validator:  deps.Validator,
		extractor:  deps.Extractor,
		moderator:  deps.Moderator,
		summarizer: deps.Summarizer,
		notes:      deps.Notes,
		activities: deps.Activities,
		logger:     deps.Logger.With("system", "ingest"),
	}
}

// Ingest stores the files of req as a single note whose content is the
// sanitized text of every file in submission order.
func (p *Pipeline) Ingest(ctx context.Context, req UploadRequest) (*notes.Note, error) {
	if err := checkUpload(req); err != nil {
		return nil, err
	}
	if err := p.admit(ctx, req.UserID); err != nil {
		return nil, err
	}
	return p.ingest(ctx, req)
}

// Admit charges one ingestion attempt to userID. Callers that admit a request
// before its files are read complete it with IngestAdmitted.
func (p *Pipeline) Admit(ctx context.Context, userID, title string) error {
	if err := checkRequest(userID, title); err != nil {
		return err
	}
	return p.admit(ctx, userID)
}

// IngestAdmitted is Ingest for a request already charged through Admit.
func (p *Pipeline) IngestAdmitted(ctx context.Context, req UploadRequest) (*notes.Note, error) {
	if err := checkUpload(req); err != nil {
		return nil, err
	}
	return p.ingest(ctx, req)
}

func (p *Pipeline) ingest(ctx context.Context, req UploadRequest) (*notes.Note, error) {
	for _, f := range req.Files {
		err := p.validator.Validate(validator.File{
			Name:        f.Name,
			ContentType: f.ContentType,
			Size:        f.Size,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
	}

	start := time.Now()
	files := make([]extractor.File, len(req.Files))
	for i, f := range req.Files {
		files[i] = extractor.File{Name: f.Name, ContentType: f.ContentType, Data: f.Data}
	}
	results := p.extractor.ExtractAll(files)

	texts := make([]string, len(results))
	screened := make([]string, len(results))
	sources := make([]notes.SourceFile, len(results))
	for i, res := range results {
		if res.Outcome != extractor.OutcomeSuccess {
			p.logger.Warn("extraction degraded",
				"file", res.Name,
				"content_type", res.ContentType,
				"outcome", res.Outcome,
			)
		}

		texts[i] = sanitizer.Sanitize(res.Text)
		screened[i] = sanitizer.StripControl(res.Text)
		sources[i] = notes.SourceFile{
			Filename:    req.Files[i].Name,
			ContentType: sourceType(req.Files[i].ContentType, res.ContentType),
			PageCount:   res.PageCount,
			Outcome:     string(res.Outcome),
			Data:        req.Files[i].Data,
		}
	}

	p.logger.Debug("files extracted", "count", len(results), "duration", time.Since(start))

	content := strings.Join(texts, separator)

	n, err := p.store(ctx, notes.CreateCommand{
		UserID:      req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Content:     content,
		Sources:     sources,
	}, strings.Join(screened, separator))
	if err != nil {
		return nil, err
	}

	p.record(ctx, req.UserID, activities.TypeNoteUpload, map[string]any{
		"note_id":    n.ID.String(),
		"title":      n.Title,
		"file_count": len(req.Files),
	})

	return n, nil
}

// IngestText stores pasted text as a note. It shares every step of Ingest
// except validation and extraction.
func (p *Pipeline) IngestText(ctx context.Context, req TextRequest) (*notes.Note, error) {
	if err := checkRequest(req.UserID, req.Title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidRequest)
	}

	if err := p.admit(ctx, req.UserID); err != nil {
		return nil, err
	}

	n, err := p.store(ctx, notes.CreateCommand{
		UserID:      req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Content:     sanitizer.Sanitize(req.Content),
	}, sanitizer.StripControl(req.Content))
	if err != nil {
		return nil, err
	}

	p.record(ctx, req.UserID, activities.TypeNoteText, map[string]any{
		"note_id": n.ID.String(),
		"title":   n.Title,
	})

	return n, nil
}

func checkUpload(req UploadRequest) error {
	if err := checkRequest(req.UserID, req.Title); err != nil {
		return err
	}
	if len(req.Files) == 0 {
		return fmt.Errorf("%w: at least one file is required", ErrInvalidRequest)
	}
	return nil
}

func checkRequest(userID, title string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	return nil
}

func (p *Pipeline) admit(ctx context.Context, userID string) error {
	if err := p.limiter.CheckAndRecord(ctx, userID); err != nil {
		p.logger.Info("ingestion rate limited", "user_id", userID)
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return nil
}

// store moderates cmd.Content, persists cmd, and attaches a summary when one is available.
// screened is the aggregate with control characters removed and markup left intact;
// it only goes through the pattern blocklist.
func (p *Pipeline) store(ctx context.Context, cmd notes.CreateCommand, screened string) (*notes.Note, error) {
	verdict := p.moderator.Screen(screened)
	if verdict.Safe {
		verdict = p.moderator.Moderate(ctx, cmd.Content)
	}
	if !verdict.Safe {
		p.logger.Info("content rejected",
			"user_id", cmd.UserID,
			"categories", verdict.Categories,
			"reason", verdict.Reason,
		)
		return nil, &RejectedError{Categories: verdict.Categories, Reason: verdict.Reason}
	}

	n, err := p.notes.Create(ctx, cmd)
	if err != nil {
		p.logger.Error("note persistence failed", "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	p.summarize(ctx, n)
	return n, nil
}

func (p *Pipeline) summarize(ctx context.Context, n *notes.Note) {
	if p.summarizer == nil {
		return
	}

	summary, err := p.summarizer.Summarize(ctx, n.Content)
	if err != nil {
		p.logger.Warn("summary skipped", "note_id", n.ID, "error", err)
		return
	}

	if err := p.notes.SetSummary(ctx, n.ID, summary); err != nil {
		p.logger.Warn("summary not saved", "note_id", n.ID, "error", err)
		return
	}

	n.Summary = &summary
}

func (p *Pipeline) record(ctx context.Context, userID, activityType string, data map[string]any) {
	if p.activities == nil {
		return
	}

	_, err := p.activities.Record(ctx, activities.RecordCommand{
		UserID:       userID,
		ActivityType: activityType,
		Data:         data,
	})
	if err != nil {
		p.logger.Warn("activity not recorded", "type", activityType, "error", err)
	}
}

// sourceType keeps the declared type unless it carried no information.
func sourceType(declared, resolved string) string {
	mediaType := validator.MediaType(declared)
	if mediaType == "" || mediaType == "application/octet-stream" {
		return resolved
	}
	return declared
}

// IsRejected reports whether err is a moderation rejection and returns its details.
func IsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	ok := errors.As(err, &rejected)
	return rejected, ok
}
