package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/JaimeStill/go-agents/pkg/agent"
	agtconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/JaimeStill/go-agents/pkg/protocol"
	"github.com/JaimeStill/go-agents/pkg/request"
	"github.com/JaimeStill/go-agents/pkg/response"
)

// ErrInvalidAgentConfig indicates the agent configuration could not build an agent.
var ErrInvalidAgentConfig = errors.New("invalid agent config")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	roleSystem    = "system"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces a completion for a system and user prompt pair.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Conversation produces the next assistant turn for a message history.
type Conversation interface {
	Converse(ctx context.Context, systemPrompt string, history []Message) (string, error)
}

// AgentCompleter is a Completer backed by a go-agents chat agent.
type AgentCompleter struct {
	agent agent.Agent
}

// NewAgentCompleter builds an agent from JSON layered over the go-agents defaults.
func NewAgentCompleter(raw json.RawMessage) (*AgentCompleter, error) {
	cfg := agtconfig.DefaultAgentConfig()

	var userCfg agtconfig.AgentConfig
	if err := json.Unmarshal(raw, &userCfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAgentConfig, err)
	}

	cfg.Merge(&userCfg)

	agt, err := agent.New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAgentConfig, err)
	}

	return &AgentCompleter{agent: agt}, nil
}

func (c *AgentCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.Converse(ctx, systemPrompt, []Message{{Role: RoleUser, Content: userPrompt}})
}

// Converse sends the system prompt as the leading message followed by the
// history in order. Model chat options from the agent config are applied.
func (c *AgentCompleter) Converse(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	messages := make([]protocol.Message, 0, len(history)+1)
	if systemPrompt != "" {
		messages = append(messages, protocol.NewMessage(roleSystem, systemPrompt))
	}
	for _, m := range history {
		messages = append(messages, protocol.NewMessage(m.Role, m.Content))
	}

	mdl := c.agent.Model()
	opts := make(map[string]any)
	maps.Copy(opts, mdl.Options[protocol.Chat])

	req := request.NewChat(c.agent.Provider(), mdl, messages, opts)

	result, err := c.agent.Client().Execute(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat failed: %w", err)
	}

	resp, ok := result.(*response.ChatResponse)
	if !ok {
		return "", fmt.Errorf("chat failed: unexpected response type %T", result)
	}

	return resp.Content(), nil
}
