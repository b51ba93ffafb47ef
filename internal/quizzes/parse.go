package quizzes

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

type questionSet struct {
	Questions []Question `json:"questions"`
}

// ParseQuestions parses an LLM response into validated questions.
// It tries direct JSON, then a fenced code block, then the outermost JSON object in the text.
func ParseQuestions(content string) ([]Question, error) {
	content = strings.TrimSpace(content)

	candidates := []string{content}
	if m := jsonBlockRegex.FindStringSubmatch(content); len(m) >= 2 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		candidates = append(candidates, content[start:end+1])
	}

	for _, c := range candidates {
		var set questionSet
		if err := json.Unmarshal([]byte(c), &set); err == nil {
			return validateQuestions(set.Questions)
		}
	}

	return nil, fmt.Errorf("%w: could not parse JSON from response", ErrParseResponse)
}

func validateQuestions(questions []Question) ([]Question, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrParseResponse)
	}

	for i := range questions {
		q := &questions[i]
		q.Type = strings.ToLower(strings.TrimSpace(q.Type))
		q.Question = strings.TrimSpace(q.Question)

		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		if q.Question == "" {
			return nil, fmt.Errorf("%w: question %s has no text", ErrParseResponse, q.ID)
		}

		switch q.Type {
		case TypeMCQ:
			if len(q.Options) < 2 {
				return nil, fmt.Errorf("%w: question %s needs at least two options", ErrParseResponse, q.ID)
			}
			if !answersOption(q.CorrectAnswer, q.Options) {
				return nil, fmt.Errorf("%w: question %s answer %q matches no option", ErrParseResponse, q.ID, q.CorrectAnswer)
			}
		case TypeLongAnswer:
			q.Options = nil
		default:
			return nil, fmt.Errorf("%w: question %s has unknown type %q", ErrParseResponse, q.ID, q.Type)
		}
	}

	return questions, nil
}

// answersOption accepts the full option text or its letter label, e.g. "B" for "B. Mitosis".
func answersOption(answer string, options []string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	if slices.Contains(options, answer) {
		return true
	}

	if len(answer) == 1 {
		idx := int(strings.ToUpper(answer)[0]) - 'A'
		return idx >= 0 && idx < len(options)
	}
	return false
}
