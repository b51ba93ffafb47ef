package quizzes

import (
	"fmt"
	"slices"
	"strings"
)

const systemPrompt = `You are a quiz generator for a study platform.

Generate quiz questions based on the provided study material. Create questions that:
1. Test understanding, not just memorization
2. Range from easy to challenging
3. Include clear explanations for answers

For MCQ questions:
- Provide exactly 4 options (A, B, C, D)
- Make distractors plausible but clearly incorrect
- Ensure only one correct answer

For long answer questions:
- Focus on application and analysis
- Provide a model answer for evaluation

Return your response as valid JSON.`

const responseFormat = `Return as JSON in this exact format:
{
  "questions": [
    {
      "id": "q1",
      "type": "mcq",
      "question": "Question text here",
      "options": ["A. Option 1", "B. Option 2", "C. Option 3", "D. Option 4"],
      "correct_answer": "A",
      "explanation": "Explanation of why this is correct"
    },
    {
      "id": "q2",
      "type": "long_answer",
      "question": "Question text here",
      "correct_answer": "Model answer here",
      "explanation": "Key points that should be covered"
    }
  ]
}`

func buildPrompt(content string, count int, types []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on this study material:\n\n%s\n\n", content)
	fmt.Fprintf(&b, "Generate %d quiz questions with the following distribution:\n", count)
	if slices.Contains(types, TypeMCQ) {
		b.WriteString("- Multiple choice questions (MCQ)\n")
	}
	if slices.Contains(types, TypeLongAnswer) {
		b.WriteString("- Long answer/essay questions\n")
	}
	b.WriteString("\n")
	b.WriteString(responseFormat)

	return b.String()
}
