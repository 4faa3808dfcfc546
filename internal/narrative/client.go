package narrative

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-haiku-4-5-20251001"

	chronicleMaxChars = 420
)

// Client wraps the Anthropic Messages API for narrative generation.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a narrative client. Returns nil if apiKey is empty
// (narrative features disabled; fallbacks apply).
func NewClient(apiKey string, timeout time.Duration) *Client {
	if apiKey == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type apiResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// complete sends a prompt and returns the response text.
func (c *Client) complete(system, userPrompt string, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("narrative client not configured")
	}

	req := apiRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: userPrompt}},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return parsed.Content[0].Text, nil
}

// Process answers one request, returning the response to submit. On any
// error the deterministic fallback is used; processing never fails.
func (c *Client) Process(req Request) Response {
	corr := req.CorrelationID
	if corr == "" {
		corr = uuid.NewString()
	}

	resp := Response{RequestID: req.ID, Kind: req.Kind, FactionID: req.FactionID, DialogueID: req.DialogueID}
	switch req.Kind {
	case KindFactionIdentity:
		resp.Identity = c.factionIdentity(req, corr)
	case KindDialogue:
		resp.Dialogue = c.dialogue(req, corr)
	case KindChronicle:
		resp.Chronicle = c.chronicle(req, corr)
	}
	return resp
}

func (c *Client) factionIdentity(req Request, corr string) *IdentityResponse {
	fallback := FallbackIdentity(req)
	if !c.Enabled() {
		return fallback
	}

	worldSummary, _ := req.Payload["worldSummary"].(string)
	system := "You name emergent tribal factions in a grounded, non-fantasy register. Respond with JSON only."
	prompt := fmt.Sprintf(
		"A faction has matured enough to deserve a name.\nWorld summary: %s\nRespond in JSON:\n{\"name\": \"...\", \"motto\": \"...\", \"religion\": \"...\", \"coreLaws\": [\"...\"]}\nAt most 4 core laws.",
		worldSummary,
	)

	text, err := c.complete(system, prompt, 300)
	if err != nil {
		slog.Debug("faction identity generation failed", "request", req.ID, "correlation", corr, "error", err)
		return fallback
	}
	var out IdentityResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &out); err != nil || out.Name == "" {
		slog.Debug("faction identity parse failed", "request", req.ID, "correlation", corr)
		return fallback
	}
	if len(out.CoreLaws) > 4 {
		out.CoreLaws = out.CoreLaws[:4]
	}
	return &out
}

func (c *Client) dialogue(req Request, corr string) *DialogueResponse {
	fallback := FallbackDialogue(req)
	if !c.Enabled() {
		return fallback
	}

	payload, _ := json.Marshal(req.Payload)
	system := "You gloss utterances in an invented proto-language into terse English. Respond with JSON only."
	prompt := fmt.Sprintf(
		"Gloss this exchange.\nContext: %s\nRespond in JSON:\n{\"gloss_it\": \"...\", \"tone\": \"...\", \"new_terms\": []}",
		string(payload),
	)

	text, err := c.complete(system, prompt, 240)
	if err != nil {
		slog.Debug("dialogue gloss failed", "request", req.ID, "correlation", corr, "error", err)
		return fallback
	}
	var out DialogueResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &out); err != nil || out.Gloss == "" {
		slog.Debug("dialogue gloss parse failed", "request", req.ID, "correlation", corr)
		return fallback
	}
	return &out
}

func (c *Client) chronicle(req Request, corr string) string {
	fallback := FallbackChronicle(req)
	if !c.Enabled() {
		return fallback
	}

	logs, _ := req.Payload["recentLogs"].([]string)
	system := "You write one-paragraph chronicles of simulated tribal history. Plain text, under 420 characters."
	prompt := "Recent events:\n" + strings.Join(logs, "\n") + "\nWrite the chronicle entry."

	text, err := c.complete(system, prompt, 220)
	if err != nil {
		slog.Debug("chronicle generation failed", "request", req.ID, "correlation", corr, "error", err)
		return fallback
	}
	text = strings.TrimSpace(text)
	if len(text) > chronicleMaxChars {
		text = text[:chronicleMaxChars]
	}
	if text == "" {
		return fallback
	}
	return text
}

// extractJSON trims everything outside the outermost braces so code-fenced
// model output still parses.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
