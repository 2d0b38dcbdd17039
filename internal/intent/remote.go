package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/config"
)

const systemPrompt = `You turn event booking requests into JSON.
Reply with a single JSON object and nothing else, with keys:
  "event": the event name as a string, or null if none is mentioned
  "tickets": an integer >= 1
  "intent": one of "book", "show", "greet"`

var errNoJSON = errors.New("model reply contained no JSON object")

// ChatClient calls an OpenAI-compatible chat-completions endpoint.
type ChatClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// NewChatClient returns nil when no API key is configured, which callers
// treat as "no remote resolver".
func NewChatClient(cfg config.LLMConfig) *ChatClient {
	if cfg.APIKey == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &ChatClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// rawResult tolerates whatever types the model chooses to emit.
type rawResult struct {
	Event   any    `json:"event"`
	Tickets any    `json:"tickets"`
	Intent  string `json:"intent"`
}

// Complete sends text to the model and normalises its reply.
func (c *ChatClient) Complete(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Text: %q", text)},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("chat request: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return Result{}, errNoJSON
	}
	return parseReply(out.Choices[0].Message.Content)
}

// parseReply extracts the outermost {...} from the model's reply and
// normalises each field.
func parseReply(content string) (Result, error) {
	content = strings.TrimSpace(content)
	start, end := strings.Index(content, "{"), strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return Result{}, errNoJSON
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return Result{}, fmt.Errorf("decode model json: %w", err)
	}

	res := Result{Tickets: normaliseTickets(raw.Tickets), Intent: Kind(raw.Intent)}
	if s, ok := raw.Event.(string); ok {
		res.Event = strings.TrimSpace(s)
	}
	if !res.Intent.valid() {
		res.Intent = Greet
	}
	return res, nil
}

func normaliseTickets(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 1
		}
		f = parsed
	default:
		return 1
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 || f > math.MaxInt32 {
		return 1
	}
	return int(math.Floor(f))
}

// NewFromConfig builds a Resolver that uses the chat endpoint when an API
// key is configured and the rule parser alone otherwise.
func NewFromConfig(cfg config.LLMConfig, log *zap.Logger) *Resolver {
	if client := NewChatClient(cfg); client != nil {
		return NewResolver(client, log)
	}
	return NewResolver(nil, log)
}
