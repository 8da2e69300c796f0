package openaiinf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/domain"
)

// Client calls the inference service for parameter extraction and candidate
// ranking. Both calls request a compact JSON object and tolerate a fenced
// code block around it; a response that stays unparsable after one
// fence-stripped retry is surfaced as domain.ErrMalformedResponse.
type Client struct {
	c       *openai.Client
	model   string
	timeout time.Duration
}

func New(key, model string) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("inference: %w", domain.ErrNotConfigured)
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{c: openai.NewClient(key), model: model, timeout: 30 * time.Second}, nil
}

// NewWithConfig exists for tests that point the client at a local server.
func NewWithConfig(cfg openai.ClientConfig, model string) *Client {
	return &Client{c: openai.NewClientWithConfig(cfg), model: model, timeout: 30 * time.Second}
}

const extractPromptFmt = `Extract hotel search parameters from: %q

Return JSON only:
{
  "location": "city/country name or null",
  "check_in": "YYYY-MM-DD or null",
  "check_out": "YYYY-MM-DD or null",
  "budget_min": number or null,
  "budget_max": number or null,
  "adults": number (default 1),
  "children": number (default 0),
  "rooms": number (default 1),
  "preferences": ["keyword1", "keyword2"] or null
}

Notes: Calculate relative dates. Budget defaults to EUR. Return null if unknown.`

// extractedParams mirrors the JSON shape the service is told to emit.
// Occupancy fields stay nullable here; defaults are applied after parsing.
type extractedParams struct {
	Location    *string  `json:"location"`
	CheckIn     *string  `json:"check_in"`
	CheckOut    *string  `json:"check_out"`
	BudgetMin   *float64 `json:"budget_min"`
	BudgetMax   *float64 `json:"budget_max"`
	Adults      *int     `json:"adults"`
	Children    *int     `json:"children"`
	Rooms       *int     `json:"rooms"`
	Preferences []string `json:"preferences"`
}

func (c *Client) ExtractParams(ctx context.Context, demand string) (domain.SearchParams, error) {
	content, err := c.chat(ctx, "extract",
		"Extract hotel search parameters. Return JSON only.",
		fmt.Sprintf(extractPromptFmt, demand), 200)
	if err != nil {
		return domain.SearchParams{}, err
	}

	var ep extractedParams
	if uerr := parseJSON(content, &ep); uerr != nil {
		return domain.SearchParams{}, uerr
	}

	p := domain.SearchParams{
		Location:    ep.Location,
		CheckIn:     ep.CheckIn,
		CheckOut:    ep.CheckOut,
		BudgetMin:   ep.BudgetMin,
		BudgetMax:   ep.BudgetMax,
		Adults:      1,
		Children:    0,
		Rooms:       1,
		Preferences: ep.Preferences,
	}
	if ep.Adults != nil && *ep.Adults > 0 {
		p.Adults = *ep.Adults
	}
	if ep.Children != nil && *ep.Children >= 0 {
		p.Children = *ep.Children
	}
	if ep.Rooms != nil && *ep.Rooms > 0 {
		p.Rooms = *ep.Rooms
	}
	if p.Preferences == nil {
		p.Preferences = []string{}
	}
	return p, nil
}

const rankPromptFmt = `User request: %q

Hotels:
%s

Return JSON with hotel IDs that match (ordered by relevance):
{"matched_ids": ["id1", "id2", ...]}`

func (c *Client) RankHotels(ctx context.Context, demand string, hotels []domain.HotelSummary) ([]string, error) {
	if len(hotels) == 0 {
		return nil, nil
	}
	summaries, err := json.Marshal(hotels)
	if err != nil {
		return nil, err
	}

	content, err := c.chat(ctx, "rank",
		"Filter hotels. Return JSON with matched_ids array only.",
		fmt.Sprintf(rankPromptFmt, demand, summaries), 500)
	if err != nil {
		return nil, err
	}

	var out struct {
		MatchedIDs []string `json:"matched_ids"`
	}
	if uerr := parseJSON(content, &out); uerr != nil {
		return nil, uerr
	}
	return out.MatchedIDs, nil
}

func (c *Client) chat(ctx context.Context, endpoint, system, user string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.3,
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	observability.ObserveExternal("openai", endpoint, statusOf(err), time.Since(start))
	if err != nil {
		return "", wrapAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("inference: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// wrapAPIError folds recognizable quota/throttle failures into the
// ErrThrottled sentinel so domain.Classify needs no string matching for the
// common case.
func wrapAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("inference: %v: %w", apiErr.Message, domain.ErrThrottled)
	}
	return fmt.Errorf("inference: %w", err)
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode
	}
	return 0
}

// parseJSON decodes the completion body, retrying once with the fenced code
// block stripped.
func parseJSON(content string, dst any) error {
	if err := json.Unmarshal([]byte(content), dst); err == nil {
		return nil
	}
	stripped := stripFence(content)
	if err := json.Unmarshal([]byte(stripped), dst); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrMalformedResponse, truncate(content, 200))
	}
	return nil
}

// stripFence removes a leading/trailing triple-backtick block (with an
// optional language tag) around the payload.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop a bare language tag such as "json" on the fence line.
		if tag := strings.TrimSpace(rest[:nl]); tag == "" || !strings.ContainsAny(tag, "{}[]\"") {
			rest = rest[nl+1:]
		}
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// truncate cuts on rune boundaries so an excerpt never ends mid-character.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
