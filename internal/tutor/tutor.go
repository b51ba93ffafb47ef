// Package tutor answers student questions in a multi-turn chat, optionally
// grounded on one of the student's notes.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/study-lab/internal/notes"
	"github.com/JaimeStill/study-lab/internal/summarizer"
	"github.com/google/uuid"
)

// ChatRequest is the conversation so far. NoteID and UserID together select
// a note whose content grounds the reply.
type ChatRequest struct {
	Messages []summarizer.Message `json:"messages"`
	NoteID   *uuid.UUID           `json:"note_id,omitempty"`
	UserID   string               `json:"user_id,omitempty"`
}

// ChatReply is the tutor's next turn.
type ChatReply struct {
	Message string `json:"message"`
}

// System defines tutor chat operations.
type System interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatReply, error)
}

// Deps holds the collaborators a tutor needs.
// Conversation may be nil, in which case Chat returns ErrUnavailable.
type Deps struct {
	Notes        notes.System
	Conversation summarizer.Conversation
	Config       *Config
	Logger       *slog.Logger
}

type tutor struct {
	notes  notes.System
	conv   summarizer.Conversation
	cfg    *Config
	logger *slog.Logger
}

// New creates a tutor.
func New(deps Deps) System {
	return &tutor{
		notes:  deps.Notes,
		conv:   deps.Conversation,
		cfg:    deps.Config,
		logger: deps.Logger.With("system", "tutor"),
	}
}

func (t *tutor) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	history, err := t.history(req.Messages)
	if err != nil {
		return nil, err
	}

	if t.conv == nil {
		return nil, ErrUnavailable
	}

	prompt := systemPrompt
	grounded := false
	if note := t.findNote(ctx, req); note != nil {
		prompt += noteContext(note, t.cfg.ContextChars)
		grounded = true
	}

	chatCtx, cancel := context.WithTimeout(ctx, t.cfg.TimeoutDuration())
	defer cancel()

	reply, err := t.conv.Converse(chatCtx, prompt, history)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChatFailed, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = emptyReply
	}

	t.logger.Info("tutor replied", "messages", len(history), "grounded", grounded)
	return &ChatReply{Message: reply}, nil
}

// history validates messages and maps every role other than user to assistant.
func (t *tutor) history(messages []summarizer.Message) ([]summarizer.Message, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: messages are required", ErrInvalidRequest)
	}
	if len(messages) > t.cfg.MaxMessages {
		return nil, fmt.Errorf("%w: at most %d messages allowed", ErrInvalidRequest, t.cfg.MaxMessages)
	}

	out := make([]summarizer.Message, len(messages))
	for i, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			return nil, fmt.Errorf("%w: message %d has no content", ErrInvalidRequest, i)
		}
		role := summarizer.RoleAssistant
		if m.Role == summarizer.RoleUser {
			role = summarizer.RoleUser
		}
		out[i] = summarizer.Message{Role: role, Content: m.Content}
	}
	return out, nil
}

// findNote returns the requested note when it belongs to the requesting user.
// Lookup failures leave the chat ungrounded.
func (t *tutor) findNote(ctx context.Context, req ChatRequest) *notes.Note {
	if req.NoteID == nil || req.UserID == "" || t.notes == nil {
		return nil
	}

	note, err := t.notes.Find(ctx, *req.NoteID)
	if err != nil {
		if !errors.Is(err, notes.ErrNotFound) {
			t.logger.Warn("note context unavailable", "note_id", *req.NoteID, "error", err)
		}
		return nil
	}
	if note.UserID != req.UserID {
		return nil
	}
	return note
}

func noteContext(note *notes.Note, limit int) string {
	content := summarizer.Truncate(note.Content, limit)

	var b strings.Builder
	b.WriteString(contextHeader)
	b.WriteString("Title: " + note.Title + "\n\nContent:\n")
	b.WriteString(content)
	if len(content) < len(note.Content) {
		b.WriteString(truncatedMarker)
	}
	return b.String()
}
