package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  \n", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := ExtractJSON(tc.in); got != tc.want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToGenaiSchema(t *testing.T) {
	s := Object(map[string]*Schema{
		"name":  String("the name"),
		"steps": ArrayOf(String("")),
		"count": Integer(""),
	}, "name")

	out := toGenaiSchema(s)
	if out.Type != genai.TypeObject {
		t.Fatalf("Expected object type, got %v", out.Type)
	}
	if out.Properties["steps"].Type != genai.TypeArray || out.Properties["steps"].Items.Type != genai.TypeString {
		t.Error("Expected steps to be an array of strings")
	}
	if out.Properties["count"].Type != genai.TypeInteger {
		t.Error("Expected count to be an integer")
	}
	if len(out.Required) != 1 || out.Required[0] != "name" {
		t.Errorf("Expected required [name], got %v", out.Required)
	}
}

func TestGroqGenerateContent(t *testing.T) {
	var gotBody map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}],"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`))
	}))
	defer ts.Close()

	c := &GroqClient{apiKey: "test-key", url: ts.URL, model: groqModel, httpClient: ts.Client()}
	resp, err := c.GenerateContent(context.Background(), Request{
		System: "be brief",
		Prompt: "say ok",
		Schema: Object(map[string]*Schema{"ok": {Type: TypeBoolean}}, "ok"),
	})
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if resp.Content != `{"ok":true}` {
		t.Errorf("Unexpected content %q", resp.Content)
	}
	if resp.Usage.PromptTokens != 12 || resp.Usage.CompletionTokens != 3 {
		t.Errorf("Unexpected usage %+v", resp.Usage)
	}

	if gotBody["response_format"] == nil {
		t.Error("Expected json_object response format when a schema is set")
	}
	messages, _ := gotBody["messages"].([]interface{})
	if len(messages) != 2 {
		t.Fatalf("Expected system and user messages, got %d", len(messages))
	}
	user, _ := messages[1].(map[string]interface{})
	if content, _ := user["content"].(string); !strings.Contains(content, `"ok"`) {
		t.Error("Expected the schema to be embedded in the user prompt")
	}
}

func TestGroqErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer ts.Close()

	c := &GroqClient{apiKey: "k", url: ts.URL, model: groqModel, httpClient: ts.Client()}
	_, err := c.GenerateContent(context.Background(), Request{Prompt: "hi"})
	if err == nil || !strings.Contains(err.Error(), "status=429") {
		t.Errorf("Expected a status error, got %v", err)
	}
}

func TestGeminiRESTChatWithSearch(t *testing.T) {
	var gotPath string
	var gotBody restRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "Try this "}, {"text": "paella."}]},
				"groundingMetadata": {"groundingChunks": [
					{"web": {"uri": "https://a.example/paella"}},
					{"web": {"uri": "https://a.example/paella"}},
					{"web": {"uri": "https://b.example/rice"}},
					{}
				]}
			}],
			"usageMetadata": {"promptTokenCount": 40, "candidatesTokenCount": 10, "totalTokenCount": 50}
		}`))
	}))
	defer ts.Close()

	c := &GeminiREST{apiKey: "k", baseURL: ts.URL, searchModel: "search-model", client: ts.Client()}
	resp, err := c.Chat(context.Background(), ChatRequest{
		System:  "You are a chef",
		History: []Message{{Role: "user", Text: "hello"}, {Role: "model", Text: "hi"}},
		Message: Message{Role: "user", Text: "find paella", Image: []byte{0xff, 0xd8}},
		Search:  true,
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if gotPath != "/search-model:generateContent" {
		t.Errorf("Expected the search model to be used, got path %s", gotPath)
	}
	if len(gotBody.Tools) != 1 {
		t.Error("Expected the google_search tool to be enabled")
	}
	if len(gotBody.Contents) != 3 {
		t.Fatalf("Expected 3 contents, got %d", len(gotBody.Contents))
	}
	last := gotBody.Contents[2]
	if len(last.Parts) != 2 || last.Parts[1].InlineData == nil {
		t.Error("Expected the image to be attached as inline data")
	}

	if resp.Text != "Try this paella." {
		t.Errorf("Unexpected text %q", resp.Text)
	}
	if len(resp.GroundingURLs) != 2 {
		t.Errorf("Expected 2 distinct grounding URLs, got %v", resp.GroundingURLs)
	}
	if resp.Usage.TotalTokens != 50 {
		t.Errorf("Expected 50 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

type stubChat struct {
	name  string
	calls int
}

func (s *stubChat) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	s.calls++
	return ChatResponse{Text: s.name}, nil
}

func TestChatRouter(t *testing.T) {
	plain, search := &stubChat{name: "plain"}, &stubChat{name: "search"}
	r := NewChatRouter(plain, search)

	resp, _ := r.Chat(context.Background(), ChatRequest{Message: Message{Text: "hi"}})
	if resp.Text != "plain" {
		t.Errorf("Expected the plain generator, got %q", resp.Text)
	}
	resp, _ = r.Chat(context.Background(), ChatRequest{Message: Message{Text: "find"}, Search: true})
	if resp.Text != "search" {
		t.Errorf("Expected the search generator, got %q", resp.Text)
	}
	if plain.calls != 1 || search.calls != 1 {
		t.Errorf("Expected one call each, got %d and %d", plain.calls, search.calls)
	}
}

func TestGeminiClientChatRejectsSearch(t *testing.T) {
	c := &GeminiClient{model: "text-model", chatModel: "chat-model"}
	if _, err := c.Chat(context.Background(), ChatRequest{Search: true}); err != ErrSearchUnsupported {
		t.Errorf("Expected ErrSearchUnsupported, got %v", err)
	}
}

func TestToGenaiHistory(t *testing.T) {
	history := toGenaiHistory([]Message{
		{Text: "hello"},
		{Role: "model", Text: "hi"},
		{Role: "user", Text: "what is this?", Image: []byte{0xff, 0xd8}},
	})
	if len(history) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "model" {
		t.Errorf("Unexpected roles %q %q", history[0].Role, history[1].Role)
	}
	if text, ok := history[1].Parts[0].(genai.Text); !ok || string(text) != "hi" {
		t.Errorf("Expected the model text part, got %v", history[1].Parts[0])
	}

	parts := history[2].Parts
	if len(parts) != 2 {
		t.Fatalf("Expected text and image parts, got %d", len(parts))
	}
	blob, ok := parts[1].(genai.Blob)
	if !ok || blob.MIMEType != "image/jpeg" || len(blob.Data) != 2 {
		t.Errorf("Expected a jpeg blob, got %#v", parts[1])
	}

	if parts := toGenaiParts(Message{Text: "plain"}); len(parts) != 1 {
		t.Errorf("Expected a single text part without an image, got %d", len(parts))
	}
}

func TestReadResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates:    []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("Try "), genai.Text("risotto.")}}}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 20, CandidatesTokenCount: 5, TotalTokenCount: 25},
	}
	text, usage := readResponse(resp, "chat-model")
	if text != "Try risotto." {
		t.Errorf("Unexpected text %q", text)
	}
	if usage.TotalTokens != 25 || usage.Model != "chat-model" {
		t.Errorf("Unexpected usage %+v", usage)
	}

	if text, _ := readResponse(&genai.GenerateContentResponse{}, "chat-model"); text != "" {
		t.Errorf("Expected no text without candidates, got %q", text)
	}
}

func TestGeminiRESTGenerateImage(t *testing.T) {
	img := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body restRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		cfg, _ := body.GenerationConfig["imageConfig"].(map[string]interface{})
		if cfg["aspectRatio"] != "4:3" || cfg["imageSize"] != "2K" {
			t.Errorf("Unexpected image config %v", cfg)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/png","data":"` + img + `"}}]}}]}`))
	}))
	defer ts.Close()

	c := &GeminiREST{apiKey: "k", baseURL: ts.URL, imageModel: "image-model", client: ts.Client()}
	resp, err := c.GenerateImage(context.Background(), "a dish", "2K")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if string(resp.Data) != "png-bytes" || resp.MIMEType != "image/png" {
		t.Errorf("Unexpected image %q %q", resp.MIMEType, resp.Data)
	}
}

func TestGeminiRESTGenerateImageWithoutImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`))
	}))
	defer ts.Close()

	c := &GeminiREST{apiKey: "k", baseURL: ts.URL, imageModel: "image-model", client: ts.Client()}
	if _, err := c.GenerateImage(context.Background(), "a dish", "1K"); err == nil {
		t.Error("Expected an error when no image part is returned")
	}
}
