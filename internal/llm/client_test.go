package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestChat(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1/",
		APIKey:  "secret",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				if req.URL.Path != "/v1/chat/completions" {
					t.Fatalf("unexpected path %s", req.URL.Path)
				}
				if got := req.Header.Get("Authorization"); got != "Bearer secret" {
					t.Fatalf("unexpected auth header %q", got)
				}
				body, _ := io.ReadAll(req.Body)
				if !strings.Contains(string(body), "user prompt") {
					t.Fatalf("expected user prompt in payload: %s", body)
				}
				return respond(200, `{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`)
			}),
		},
	}
	out, err := client.Chat(context.Background(), "system", "user prompt")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "hi" {
		t.Fatalf("unexpected chat output %s", out)
	}
}

func TestChatJSON(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				body, _ := io.ReadAll(req.Body)
				if !strings.Contains(string(body), "json_object") {
					t.Fatalf("expected json response format in payload: %s", body)
				}
				return respond(200, `{"choices":[{"message":{"role":"assistant","content":"`+"```json\\n{\\\"goal\\\": \\\"eq(x, ?)\\\"}\\n```"+`"}}]}`)
			}),
		},
	}
	var out struct {
		Goal string `json:"goal"`
	}
	if err := client.ChatJSON(context.Background(), "system", "user", &out); err != nil {
		t.Fatalf("ChatJSON: %v", err)
	}
	if out.Goal != "eq(x, ?)" {
		t.Fatalf("unexpected goal %q", out.Goal)
	}
}

func TestChatAPIError(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return respond(400, `{"error":{"message":"bad","type":"invalid_request_error"}}`)
			}),
		},
	}
	_, err := client.Chat(context.Background(), "s", "u")
	if !errors.Is(err, internalerr.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
}

func TestChatEmptyChoices(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return respond(200, `{"choices":[]}`)
			}),
		},
	}
	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error")
	}
}

func TestChatRequiresConfig(t *testing.T) {
	_, err := (&Client{}).Chat(context.Background(), "s", "u")
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestStripFence(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripFence(in); got != want {
			t.Errorf("stripFence(%q) = %q, want %q", in, got, want)
		}
	}
}
