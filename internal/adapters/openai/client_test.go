package openaiinf

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"stayfinder/internal/domain"
)

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = ts.URL + "/v1"
	return NewWithConfig(cfg, "gpt-4o-mini")
}

func TestExtractParams_FencedJSON(t *testing.T) {
	content := "```json\n" +
		`{"location":"Paris","check_in":null,"check_out":null,"budget_min":null,"budget_max":200,"adults":2,"children":null,"rooms":null,"preferences":["romantic"]}` +
		"\n```"
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, content))
	})

	p, err := c.ExtractParams(context.Background(), "romantic hotel in Paris under 200")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p.Location == nil || *p.Location != "Paris" {
		t.Fatalf("location: %+v", p.Location)
	}
	if p.BudgetMax == nil || *p.BudgetMax != 200 {
		t.Fatalf("budget_max: %+v", p.BudgetMax)
	}
	// Nullable occupancy fields collapse to the documented defaults.
	if p.Adults != 2 || p.Children != 0 || p.Rooms != 1 {
		t.Fatalf("occupancy: %d/%d/%d", p.Adults, p.Children, p.Rooms)
	}
	if len(p.Preferences) != 1 || p.Preferences[0] != "romantic" {
		t.Fatalf("preferences: %v", p.Preferences)
	}
}

func TestRankHotels_MatchedIDs(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, `{"matched_ids":["b","a"]}`))
	})

	price := 100.0
	ids, err := c.RankHotels(context.Background(), "any", []domain.HotelSummary{
		{ID: "a", Name: "A", Price: &price},
		{ID: "b", Name: "B", Price: &price},
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "a" {
		t.Fatalf("ids: %v", ids)
	}
}

func TestRankHotels_NoCandidatesNoCall(t *testing.T) {
	called := false
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	ids, err := c.RankHotels(context.Background(), "any", nil)
	if err != nil || ids != nil {
		t.Fatalf("ids=%v err=%v", ids, err)
	}
	if called {
		t.Fatalf("no request expected for an empty candidate set")
	}
}

func TestChat_QuotaExhaustionClassifiesThrottled(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`))
	})

	_, err := c.ExtractParams(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}
	if kind := domain.Classify(err); kind != domain.FailThrottled {
		t.Fatalf("kind: %v", kind)
	}
}

func TestChat_UnparsableContentIsMalformed(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, "I am sorry, I cannot help with that."))
	})

	_, err := c.ExtractParams(context.Background(), "anything")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if kind := domain.Classify(err); kind != domain.FailMalformed {
		t.Fatalf("kind: %v", kind)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New("", "gpt-4o-mini"); !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("err: %v", err)
	}
}

func TestTruncate_RuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 300)
	got := truncate(s, 200)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated excerpt is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 200 {
		t.Fatalf("rune count: %d", n)
	}
	if short := "café"; truncate(short, 200) != short {
		t.Fatalf("short strings must pass through unchanged")
	}
}

func TestStripFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"{\"a\":1}", `{"a":1}`},
		{"noise ```json\n{\"a\":1}\n``` trailing", `{"a":1}`},
	}
	for _, c := range cases {
		if got := stripFence(c.in); got != c.want {
			t.Fatalf("stripFence(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
