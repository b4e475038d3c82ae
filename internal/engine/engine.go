// Package engine reaches the external decision engine over HTTP. The
// engine is an OpenAI-compatible chat completions endpoint; it gets one
// prompt describing the world plus the callable tool definitions, and
// replies with text and/or tool calls. Failures here are never fatal to
// the agent — callers log and try again on the next tick.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	BaseURL string // e.g. https://api.openai.com/v1
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ToolDefinition describes one callable tool in the function-calling
// format the engine understands.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema for the arguments object
}

// ToolCall is one action the engine chose.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// Decision is one engine reply: free text plus zero or more tool calls.
type Decision struct {
	Text  string
	Calls []ToolCall
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []chatTool    `json:"tools,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Decide asks the engine what to do next.
func (c *Client) Decide(ctx context.Context, system, prompt string, tools []ToolDefinition) (Decision, error) {
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Decision{}, err
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Decision{}, err
	}
	hr.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		hr.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(hr)
	if err != nil {
		return Decision{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Decision{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Decision{}, fmt.Errorf("engine: status %d: %s", resp.StatusCode, truncate(string(b), 200))
	}

	var cr chatResponse
	if err := json.Unmarshal(b, &cr); err != nil {
		return Decision{}, fmt.Errorf("engine: parse response: %w", err)
	}
	if cr.Error != nil {
		return Decision{}, fmt.Errorf("engine: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return Decision{}, fmt.Errorf("engine: empty choices")
	}

	msg := cr.Choices[0].Message
	d := Decision{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		d.Calls = append(d.Calls, ToolCall{
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return d, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
