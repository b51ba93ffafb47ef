package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/study-lab/internal/activities"
	"github.com/JaimeStill/study-lab/internal/extractor"
	"github.com/JaimeStill/study-lab/internal/ingest"
	"github.com/JaimeStill/study-lab/internal/moderation"
	"github.com/JaimeStill/study-lab/internal/notes"
	"github.com/JaimeStill/study-lab/internal/ratelimit"
	"github.com/JaimeStill/study-lab/internal/sanitizer"
	"github.com/JaimeStill/study-lab/internal/validator"
	"github.com/JaimeStill/study-lab/pkg/logging"
	"github.com/JaimeStill/study-lab/pkg/pagination"
)

type memNotes struct {
	mu        sync.Mutex
	created   []notes.CreateCommand
	summaries map[uuid.UUID]string
	createErr error
}

func (m *memNotes) List(context.Context, pagination.PageRequest, notes.Filters) (*pagination.PageResult[notes.Note], error) {
	return nil, errors.New("not implemented")
}

func (m *memNotes) Find(context.Context, uuid.UUID) (*notes.Note, error) {
	return nil, notes.ErrNotFound
}

func (m *memNotes) Create(_ context.Context, cmd notes.CreateCommand) (*notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, cmd)

	now := time.Now()
	n := &notes.Note{
		ID:          uuid.New(),
		UserID:      cmd.UserID,
		Title:       cmd.Title,
		Description: cmd.Description,
		Content:     cmd.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, src := range cmd.Sources {
		n.Sources = append(n.Sources, notes.Source{
			ID:          uuid.New(),
			NoteID:      n.ID,
			Position:    i,
			Filename:    src.Filename,
			ContentType: src.ContentType,
			SizeBytes:   int64(len(src.Data)),
			PageCount:   src.PageCount,
			Outcome:     src.Outcome,
			CreatedAt:   now,
		})
	}
	return n, nil
}

func (m *memNotes) SetSummary(_ context.Context, id uuid.UUID, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summaries == nil {
		m.summaries = make(map[uuid.UUID]string)
	}
	m.summaries[id] = summary
	return nil
}

func (m *memNotes) Update(context.Context, uuid.UUID, notes.UpdateCommand) (*notes.Note, error) {
	return nil, errors.New("not implemented")
}

func (m *memNotes) Delete(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}

func (m *memNotes) Download(context.Context, uuid.UUID, uuid.UUID) (*notes.Source, []byte, error) {
	return nil, nil, errors.New("not implemented")
}

type memActivities struct {
	mu       sync.Mutex
	recorded []activities.RecordCommand
	err      error
}

func (m *memActivities) Record(_ context.Context, cmd activities.RecordCommand) (*activities.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.recorded = append(m.recorded, cmd)
	return &activities.Activity{ID: uuid.New(), UserID: cmd.UserID, ActivityType: cmd.ActivityType, Data: cmd.Data}, nil
}

func (m *memActivities) List(context.Context, pagination.PageRequest, activities.Filters) (*pagination.PageResult[activities.Activity], error) {
	return nil, errors.New("not implemented")
}

type stubSummarizer struct {
	summary string
	err     error
	calls   int
}

func (s *stubSummarizer) Summarize(context.Context, string) (string, error) {
	s.calls++
	return s.summary, s.err
}

type classifierFunc func(ctx context.Context, text string) ([]string, error)

func (f classifierFunc) Classify(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	pipeline   *ingest.Pipeline
	notes      *memNotes
	activities *memActivities
	clock      *clock
}

type setup struct {
	classifier moderation.Classifier
	summarizer ingest.Summarizer
	extractor  []extractor.Option
	logger     *slog.Logger
}

func newFixture(t *testing.T, s setup) *fixture {
	t.Helper()

	logger := s.logger
	if logger == nil {
		logger = logging.Discard()
	}

	rlCfg := &ratelimit.Config{}
	if err := rlCfg.Finalize(nil); err != nil {
		t.Fatalf("ratelimit Finalize() error = %v", err)
	}
	modCfg := &moderation.Config{}
	if err := modCfg.Finalize(nil); err != nil {
		t.Fatalf("moderation Finalize() error = %v", err)
	}

	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	f := &fixture{
		notes:      &memNotes{},
		activities: &memActivities{},
		clock:      clk,
	}

	f.pipeline = ingest.New(ingest.Deps{
		Limiter:    ratelimit.New(rlCfg, ratelimit.NewMemoryStore(ratelimit.DefaultSweepThreshold), logger, ratelimit.WithClock(clk.Now)),
		Validator:  validator.New(validator.DefaultRules()),
		Extractor:  extractor.New(logger, s.extractor...),
		Moderator:  moderation.New(modCfg, s.classifier, logger),
		Summarizer: s.summarizer,
		Notes:      f.notes,
		Activities: f.activities,
		Logger:     logger,
	})
	return f
}

func textFile(name, content string) ingest.RawFile {
	return ingest.RawFile{
		Name:        name,
		ContentType: validator.TypeText,
		Size:        int64(len(content)),
		Data:        []byte(content),
	}
}

func upload(files ...ingest.RawFile) ingest.UploadRequest {
	return ingest.UploadRequest{UserID: "student-1", Title: "Biology Ch.1", Files: files}
}

func benignText(size int) string {
	const line = "Photosynthesis converts light energy into chemical energy stored in glucose.\n"
	var b strings.Builder
	for b.Len() < size {
		b.WriteString(line)
	}
	return b.String()
}

func TestIngest_PlainText(t *testing.T) {
	f := newFixture(t, setup{})
	body := benignText(5 << 10)

	n, err := f.pipeline.Ingest(context.Background(), upload(textFile("biology.txt", body)))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if n.Title != "Biology Ch.1" {
		t.Errorf("Title = %q", n.Title)
	}
	if n.Content != sanitizer.Sanitize(body) {
		t.Error("Content is not the sanitized file text")
	}
	if n.Summary != nil {
		t.Errorf("Summary = %q, want nil without a summarizer", *n.Summary)
	}

	if len(f.notes.created) != 1 {
		t.Fatalf("created %d notes, want 1", len(f.notes.created))
	}
	src := f.notes.created[0].Sources
	if len(src) != 1 || src[0].Filename != "biology.txt" || src[0].Outcome != string(extractor.OutcomeSuccess) {
		t.Errorf("Sources = %+v", src)
	}
}

func TestIngest_PDFDecoderFailure(t *testing.T) {
	failing := extractor.DecoderFunc(func([]byte) (string, error) {
		return "", errors.New("malformed xref table")
	})
	f := newFixture(t, setup{
		extractor: []extractor.Option{extractor.WithDecoder(validator.TypePDF, failing)},
	})

	data := []byte("%PDF-1.4 truncated")
	n, err := f.pipeline.Ingest(context.Background(), upload(ingest.RawFile{
		Name:        "lecture.pdf",
		ContentType: validator.TypePDF,
		Size:        int64(len(data)),
		Data:        data,
	}))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if !strings.Contains(strings.ToLower(n.Content), "could not extract text") {
		t.Errorf("Content = %q, want extraction placeholder", n.Content)
	}
	if got := n.Sources[0].Outcome; got != string(extractor.OutcomeFallback) {
		t.Errorf("Outcome = %q, want %q", got, extractor.OutcomeFallback)
	}
}

func TestIngest_ScriptRejected(t *testing.T) {
	f := newFixture(t, setup{})

	_, err := f.pipeline.Ingest(context.Background(), upload(
		textFile("notes.txt", "Chapter one covers cells. <script>steal()</script> Chapter two covers tissue."),
	))

	if !errors.Is(err, ingest.ErrContentRejected) {
		t.Fatalf("error = %v, want ErrContentRejected", err)
	}
	rejected, ok := ingest.IsRejected(err)
	if !ok {
		t.Fatalf("error %T is not *RejectedError", err)
	}
	if !slices.Contains(rejected.Categories, moderation.CategoryMalicious) {
		t.Errorf("Categories = %v, want %q", rejected.Categories, moderation.CategoryMalicious)
	}
	if len(f.notes.created) != 0 {
		t.Error("rejected content was persisted")
	}
}

func TestIngest_PaddedShortContentRejected(t *testing.T) {
	f := newFixture(t, setup{})

	_, err := f.pipeline.Ingest(context.Background(), upload(
		textFile("a.txt", "hi\n\n\n\n\n\n\n\n\n\n\n\n"),
	))

	rejected, ok := ingest.IsRejected(err)
	if !ok {
		t.Fatalf("error = %v, want *RejectedError", err)
	}
	if !slices.Equal(rejected.Categories, []string{moderation.CategoryInsufficient}) {
		t.Errorf("Categories = %v, want %q", rejected.Categories, moderation.CategoryInsufficient)
	}
	if len(f.notes.created) != 0 {
		t.Error("content shorter than the minimum after sanitizing was persisted")
	}
}

func TestIngest_ClassifierSeesStoredText(t *testing.T) {
	var seen string
	f := newFixture(t, setup{
		classifier: classifierFunc(func(_ context.Context, text string) ([]string, error) {
			seen = text
			return nil, nil
		}),
	})

	body := `<p onmouseover="alert(document.cookie)">Osmosis moves water across membranes.</p>` + "\n\n\n\n"
	n, err := f.pipeline.Ingest(context.Background(), upload(textFile("osmosis.txt", body)))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if seen != n.Content {
		t.Errorf("classifier input = %q, stored = %q", seen, n.Content)
	}
	if strings.Contains(seen, "onmouseover") {
		t.Errorf("classifier input %q still carries the event handler", seen)
	}
}

func TestIngest_RateLimited(t *testing.T) {
	f := newFixture(t, setup{})
	ctx := context.Background()
	req := upload(textFile("biology.txt", benignText(256)))

	for i := range 20 {
		if _, err := f.pipeline.Ingest(ctx, req); err != nil {
			t.Fatalf("upload %d: error = %v", i+1, err)
		}
		f.clock.Advance(2 * time.Second)
	}

	_, err := f.pipeline.Ingest(ctx, req)
	if !errors.Is(err, ingest.ErrRateLimited) {
		t.Fatalf("upload 21: error = %v, want ErrRateLimited", err)
	}

	var le *ratelimit.LimitError
	if !errors.As(err, &le) {
		t.Fatalf("error does not wrap *ratelimit.LimitError: %v", err)
	}
	if len(f.notes.created) != 20 {
		t.Errorf("created %d notes, want 20", len(f.notes.created))
	}

	f.clock.Advance(time.Minute)
	if _, err := f.pipeline.Ingest(ctx, req); err != nil {
		t.Errorf("upload after window: error = %v", err)
	}
}

func TestAdmit_IngestAdmittedChargesOnce(t *testing.T) {
	f := newFixture(t, setup{})
	ctx := context.Background()
	req := upload(textFile("biology.txt", benignText(256)))

	for i := range 20 {
		if err := f.pipeline.Admit(ctx, req.UserID, req.Title); err != nil {
			t.Fatalf("Admit() %d error = %v", i+1, err)
		}
		if _, err := f.pipeline.IngestAdmitted(ctx, req); err != nil {
			t.Fatalf("IngestAdmitted() %d error = %v", i+1, err)
		}
	}

	if err := f.pipeline.Admit(ctx, req.UserID, req.Title); !errors.Is(err, ingest.ErrRateLimited) {
		t.Errorf("Admit() 21st error = %v, want ErrRateLimited", err)
	}
}

func TestAdmit_RequiresUserAndTitle(t *testing.T) {
	f := newFixture(t, setup{})

	if err := f.pipeline.Admit(context.Background(), "", "Biology"); !errors.Is(err, ingest.ErrInvalidRequest) {
		t.Errorf("Admit() error = %v, want ErrInvalidRequest", err)
	}
}

func TestIngest_LegacyDoc(t *testing.T) {
	invoked := false
	f := newFixture(t, setup{
		extractor: []extractor.Option{
			extractor.WithDecoder(validator.TypeDOC, extractor.DecoderFunc(func([]byte) (string, error) {
				invoked = true
				return "decoded", nil
			})),
		},
	})

	data := []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
	n, err := f.pipeline.Ingest(context.Background(), upload(ingest.RawFile{
		Name:        "old.doc",
		ContentType: validator.TypeDOC,
		Size:        int64(len(data)),
		Data:        data,
	}))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	want := "[Note: old.doc is an old Word format (.doc). Please:\n1. Open it in Word\n2. Save as .docx or PDF\n3. Re-upload the new file]"
	if n.Content != want {
		t.Errorf("Content = %q, want %q", n.Content, want)
	}
	if invoked {
		t.Error("decoder invoked for legacy .doc")
	}
}

func TestIngest_AggregatesInSubmissionOrder(t *testing.T) {
	f := newFixture(t, setup{})

	files := make([]ingest.RawFile, 6)
	want := make([]string, 6)
	for i := range files {
		want[i] = fmt.Sprintf("Section %d covers the cell membrane in detail.", i+1)
		files[i] = textFile(fmt.Sprintf("part%d.txt", i+1), "\x00"+want[i]+"\n\n\n\n")
	}

	n, err := f.pipeline.Ingest(context.Background(), upload(files...))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if n.Content != strings.Join(want, "\n\n") {
		t.Errorf("Content = %q", n.Content)
	}
	for i, src := range f.notes.created[0].Sources {
		if src.Filename != files[i].Name {
			t.Errorf("Sources[%d] = %q, want %q", i, src.Filename, files[i].Name)
		}
	}

	if len(f.activities.recorded) != 1 {
		t.Fatalf("recorded %d activities, want 1", len(f.activities.recorded))
	}
	act := f.activities.recorded[0]
	if act.ActivityType != activities.TypeNoteUpload {
		t.Errorf("ActivityType = %q", act.ActivityType)
	}
	if act.Data["file_count"] != 6 || act.Data["note_id"] != n.ID.String() {
		t.Errorf("Data = %v", act.Data)
	}
}

func TestIngest_RequestErrors(t *testing.T) {
	tests := []struct {
		name string
		req  ingest.UploadRequest
		want error
	}{
		{
			name: "missing user",
			req:  ingest.UploadRequest{Title: "Bio", Files: []ingest.RawFile{textFile("a.txt", benignText(64))}},
			want: ingest.ErrInvalidRequest,
		},
		{
			name: "missing title",
			req:  ingest.UploadRequest{UserID: "student-1", Title: "  ", Files: []ingest.RawFile{textFile("a.txt", benignText(64))}},
			want: ingest.ErrInvalidRequest,
		},
		{
			name: "no files",
			req:  ingest.UploadRequest{UserID: "student-1", Title: "Bio"},
			want: ingest.ErrInvalidRequest,
		},
		{
			name: "suspicious name",
			req:  upload(textFile("notes.txt", benignText(64)), textFile("setup.exe", "MZ")),
			want: ingest.ErrInvalidFile,
		},
		{
			name: "oversized file",
			req: upload(ingest.RawFile{
				Name:        "huge.txt",
				ContentType: validator.TypeText,
				Size:        validator.MaxSize + 1,
				Data:        []byte("small"),
			}),
			want: ingest.ErrInvalidFile,
		},
		{
			name: "unsupported type",
			req: upload(ingest.RawFile{
				Name:        "photo.png",
				ContentType: "image/png",
				Size:        4,
				Data:        []byte{0x89, 'P', 'N', 'G'},
			}),
			want: ingest.ErrInvalidFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, setup{})

			_, err := f.pipeline.Ingest(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if len(f.notes.created) != 0 {
				t.Error("invalid request was persisted")
			}
		})
	}
}

func TestIngest_InvalidFileNamesFile(t *testing.T) {
	f := newFixture(t, setup{})

	_, err := f.pipeline.Ingest(context.Background(), upload(
		textFile("notes.txt", benignText(64)),
		textFile("archive.tar.txt", benignText(64)),
	))

	var fe *validator.FileError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *validator.FileError", err)
	}
	if fe.Name != "archive.tar.txt" {
		t.Errorf("Name = %q", fe.Name)
	}
	if !errors.Is(err, validator.ErrSuspiciousFile) {
		t.Errorf("error = %v, want ErrSuspiciousFile", err)
	}
}

func TestIngest_PersistenceFailure(t *testing.T) {
	f := newFixture(t, setup{})
	f.notes.createErr = errors.New("connection reset")

	_, err := f.pipeline.Ingest(context.Background(), upload(textFile("biology.txt", benignText(128))))
	if !errors.Is(err, ingest.ErrPersistenceFailed) {
		t.Fatalf("error = %v, want ErrPersistenceFailed", err)
	}
	if len(f.activities.recorded) != 0 {
		t.Error("activity recorded for failed ingestion")
	}
}

func TestIngest_Summary(t *testing.T) {
	t.Run("attached", func(t *testing.T) {
		sum := &stubSummarizer{summary: "Plants turn light into sugar."}
		f := newFixture(t, setup{summarizer: sum})

		n, err := f.pipeline.Ingest(context.Background(), upload(textFile("biology.txt", benignText(128))))
		if err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}

		if n.Summary == nil || *n.Summary != sum.summary {
			t.Errorf("Summary = %v, want %q", n.Summary, sum.summary)
		}
		if f.notes.summaries[n.ID] != sum.summary {
			t.Error("summary not stored")
		}
	})

	t.Run("failure swallowed", func(t *testing.T) {
		sum := &stubSummarizer{err: context.DeadlineExceeded}
		f := newFixture(t, setup{summarizer: sum})

		n, err := f.pipeline.Ingest(context.Background(), upload(textFile("biology.txt", benignText(128))))
		if err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}

		if n.Summary != nil {
			t.Errorf("Summary = %q, want nil", *n.Summary)
		}
		if sum.calls != 1 {
			t.Errorf("summarizer calls = %d, want 1", sum.calls)
		}
	})
}

func TestIngest_ClassifierOutageFailsOpen(t *testing.T) {
	down := classifierFunc(func(context.Context, string) ([]string, error) {
		return nil, errors.New("service unavailable")
	})
	f := newFixture(t, setup{classifier: down})

	if _, err := f.pipeline.Ingest(context.Background(), upload(textFile("biology.txt", benignText(128)))); err != nil {
		t.Fatalf("Ingest() error = %v, want fail-open success", err)
	}
}

func TestIngest_ClassifierFlagged(t *testing.T) {
	flagged := classifierFunc(func(context.Context, string) ([]string, error) {
		return []string{"harassment"}, nil
	})
	f := newFixture(t, setup{classifier: flagged})

	_, err := f.pipeline.Ingest(context.Background(), upload(textFile("biology.txt", benignText(128))))

	rejected, ok := ingest.IsRejected(err)
	if !ok {
		t.Fatalf("error = %v, want *RejectedError", err)
	}
	if !slices.Equal(rejected.Categories, []string{"harassment"}) {
		t.Errorf("Categories = %v", rejected.Categories)
	}
}

func TestIngest_ActivityFailureIgnored(t *testing.T) {
	f := newFixture(t, setup{})
	f.activities.err = errors.New("activities table missing")

	if _, err := f.pipeline.Ingest(context.Background(), upload(textFile("biology.txt", benignText(128)))); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
}

func TestIngestText(t *testing.T) {
	f := newFixture(t, setup{})

	desc := "lecture 3"
	n, err := f.pipeline.IngestText(context.Background(), ingest.TextRequest{
		UserID:      "student-1",
		Title:       "Mitosis",
		Description: &desc,
		Content:     "Prophase\x00 begins when chromatin condenses.\n\n\n\nMetaphase follows.",
	})
	if err != nil {
		t.Fatalf("IngestText() error = %v", err)
	}

	want := "Prophase begins when chromatin condenses.\n\nMetaphase follows."
	if n.Content != want {
		t.Errorf("Content = %q, want %q", n.Content, want)
	}
	if n.Description == nil || *n.Description != desc {
		t.Errorf("Description = %v", n.Description)
	}
	if len(f.notes.created[0].Sources) != 0 {
		t.Error("text ingestion created sources")
	}
	if got := f.activities.recorded[0].ActivityType; got != activities.TypeNoteText {
		t.Errorf("ActivityType = %q, want %q", got, activities.TypeNoteText)
	}
}

func TestIngestText_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  ingest.TextRequest
		want error
	}{
		{"empty content", ingest.TextRequest{UserID: "u", Title: "t", Content: " \n "}, ingest.ErrInvalidRequest},
		{"too short", ingest.TextRequest{UserID: "u", Title: "t", Content: "tiny"}, ingest.ErrContentRejected},
		{"short after sanitizing", ingest.TextRequest{UserID: "u", Title: "t", Content: "ok\n\n\n\n\n\n\n\n\n\n\n\n      "}, ingest.ErrContentRejected},
		{"event handler", ingest.TextRequest{UserID: "u", Title: "t", Content: `<img src=x onerror="alert(1)"> notes about cells`}, ingest.ErrContentRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, setup{})
			if _, err := f.pipeline.IngestText(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIngest_LeavesCreationLogToNotes(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&logging.Config{Level: "info", Format: "text"}, &buf)
	f := newFixture(t, setup{logger: logger})

	if _, err := f.pipeline.Ingest(context.Background(), upload(textFile("bio.txt", benignText(512)))); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if strings.Contains(buf.String(), "note created") {
		t.Errorf("pipeline logged note creation:\n%s", buf.String())
	}
}
