package quizzes_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/study-lab/internal/quizzes"
)

const validResponse = `{
  "questions": [
    {"id": "q1", "type": "mcq", "question": "What powers the cell?", "options": ["A. Nucleus", "B. Mitochondria", "C. Ribosome", "D. Wall"], "correct_answer": "B", "explanation": "ATP"},
    {"id": "q2", "type": "long_answer", "question": "Explain osmosis.", "correct_answer": "Water moves...", "explanation": "Gradient"}
  ]
}`

func TestParseQuestions_Formats(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"direct json", validResponse},
		{"fenced json", "Here is your quiz:\n```json\n" + validResponse + "\n```\nGood luck!"},
		{"fenced without language", "```\n" + validResponse + "\n```"},
		{"surrounding prose", "Sure! " + validResponse + " Let me know if you need more."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := quizzes.ParseQuestions(tt.content)
			if err != nil {
				t.Fatalf("ParseQuestions() error = %v", err)
			}
			if len(questions) != 2 {
				t.Fatalf("len(questions) = %d, want 2", len(questions))
			}
			if questions[0].Type != quizzes.TypeMCQ || questions[1].Type != quizzes.TypeLongAnswer {
				t.Errorf("types = %q, %q", questions[0].Type, questions[1].Type)
			}
		})
	}
}

func TestParseQuestions_Normalizes(t *testing.T) {
	content := `{"questions":[
		{"type":"MCQ","question":" Pick one ","options":["red","blue"],"correct_answer":"blue"},
		{"type":"long_answer","question":"Discuss.","options":["stray"],"correct_answer":"..."}
	]}`

	questions, err := quizzes.ParseQuestions(content)
	if err != nil {
		t.Fatalf("ParseQuestions() error = %v", err)
	}

	if questions[0].ID != "q1" || questions[1].ID != "q2" {
		t.Errorf("ids = %q, %q, want generated q1, q2", questions[0].ID, questions[1].ID)
	}
	if questions[0].Type != quizzes.TypeMCQ {
		t.Errorf("Type = %q, want mcq", questions[0].Type)
	}
	if questions[0].Question != "Pick one" {
		t.Errorf("Question = %q", questions[0].Question)
	}
	if questions[1].Options != nil {
		t.Errorf("long answer Options = %v, want nil", questions[1].Options)
	}
}

func TestParseQuestions_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "I cannot help with that."},
		{"no questions", `{"questions":[]}`},
		{"mcq one option", `{"questions":[{"type":"mcq","question":"Q","options":["A. x"],"correct_answer":"A"}]}`},
		{"mcq answer out of range", `{"questions":[{"type":"mcq","question":"Q","options":["A. x","B. y"],"correct_answer":"D"}]}`},
		{"mcq answer unknown text", `{"questions":[{"type":"mcq","question":"Q","options":["x","y"],"correct_answer":"z"}]}`},
		{"unknown type", `{"questions":[{"type":"true_false","question":"Q","correct_answer":"true"}]}`},
		{"empty question", `{"questions":[{"type":"long_answer","question":"  ","correct_answer":"a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quizzes.ParseQuestions(tt.content)
			if !errors.Is(err, quizzes.ErrParseResponse) {
				t.Errorf("ParseQuestions() error = %v, want ErrParseResponse", err)
			}
		})
	}
}
