package summarizer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/study-lab/internal/summarizer"
)

type chatBody struct {
	Model       string               `json:"model"`
	Messages    []summarizer.Message `json:"messages"`
	Temperature float64              `json:"temperature"`
}

func newChatServer(t *testing.T, reply string, got *chatBody, raw *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		*raw = body
		data, _ := json.Marshal(body)
		_ = json.Unmarshal(data, got)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"model":"tutor","choices":[{"index":0,"message":{"role":"assistant","content":%q}}]}`, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newCompleter(t *testing.T, baseURL string) *summarizer.AgentCompleter {
	t.Helper()
	cfg := fmt.Sprintf(`{
		"name": "study",
		"provider": {"name": "ollama", "base_url": %q},
		"model": {"name": "llama3.2:3b", "capabilities": {"chat": {"temperature": 0.3}}}
	}`, baseURL)

	c, err := summarizer.NewAgentCompleter(json.RawMessage(cfg))
	if err != nil {
		t.Fatalf("NewAgentCompleter() error = %v", err)
	}
	return c
}

func TestAgentCompleter_SendsSystemMessage(t *testing.T) {
	var got chatBody
	var raw map[string]any
	srv := newChatServer(t, "Cells are small.", &got, &raw)
	c := newCompleter(t, srv.URL)

	reply, err := c.Complete(context.Background(), "You are a summarizer.", "Summarize cells.")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "Cells are small." {
		t.Errorf("Complete() = %q", reply)
	}

	want := []summarizer.Message{
		{Role: "system", Content: "You are a summarizer."},
		{Role: "user", Content: "Summarize cells."},
	}
	if len(got.Messages) != len(want) {
		t.Fatalf("messages = %+v, want %+v", got.Messages, want)
	}
	for i := range want {
		if got.Messages[i] != want[i] {
			t.Errorf("messages[%d] = %+v, want %+v", i, got.Messages[i], want[i])
		}
	}
	if _, ok := raw["system_prompt"]; ok {
		t.Error("request body carries system_prompt as an option")
	}
	if got.Model != "llama3.2:3b" {
		t.Errorf("model = %q", got.Model)
	}
	if got.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", got.Temperature)
	}
}

func TestAgentCompleter_ConverseKeepsHistoryOrder(t *testing.T) {
	var got chatBody
	var raw map[string]any
	srv := newChatServer(t, "Photosynthesis makes glucose.", &got, &raw)
	c := newCompleter(t, srv.URL)

	history := []summarizer.Message{
		{Role: summarizer.RoleUser, Content: "What is photosynthesis?"},
		{Role: summarizer.RoleAssistant, Content: "A process in plants."},
		{Role: summarizer.RoleUser, Content: "What does it make?"},
	}

	reply, err := c.Converse(context.Background(), "You are a tutor.", history)
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if reply != "Photosynthesis makes glucose." {
		t.Errorf("Converse() = %q", reply)
	}
	if len(got.Messages) != 4 {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if got.Messages[0].Role != "system" {
		t.Errorf("messages[0].Role = %q, want system", got.Messages[0].Role)
	}
	for i, m := range history {
		if got.Messages[i+1] != m {
			t.Errorf("messages[%d] = %+v, want %+v", i+1, got.Messages[i+1], m)
		}
	}
}

func TestNewAgentCompleter_InvalidJSON(t *testing.T) {
	if _, err := summarizer.NewAgentCompleter(json.RawMessage(`{`)); err == nil {
		t.Fatal("NewAgentCompleter() error = nil")
	}
}
