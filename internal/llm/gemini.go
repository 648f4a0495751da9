package llm

import (
	"context"
	"fmt"
	"strings"

	"yourkitchen/internal/config"
	"yourkitchen/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient generates schema constrained JSON and runs plain chats
// through the Gemini SDK.
type GeminiClient struct {
	client    *genai.Client
	model     string
	chatModel string
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.GeminiTextModel, chatModel: cfg.GeminiChatModel}, nil
}

// GenerateContent sends the request to the Gemini model and returns the generated text.
func (c *GeminiClient) GenerateContent(ctx context.Context, req Request) (ContentResponse, error) {
	// GenerativeModel carries per-call config, so every call gets its own.
	model := c.client.GenerativeModel(c.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = toGenaiSchema(req.Schema)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text, usage := readResponse(resp, c.model)
	if text == "" {
		return ContentResponse{Usage: usage}, ErrNoContent
	}
	return ContentResponse{Content: text, Usage: usage}, nil
}

// Chat continues a chat session seeded with the request history. Search
// grounded chats go through GeminiREST.
func (c *GeminiClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if req.Search {
		return ChatResponse{}, ErrSearchUnsupported
	}

	model := c.client.GenerativeModel(c.chatModel)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	cs := model.StartChat()
	cs.History = toGenaiHistory(req.History)

	resp, err := cs.SendMessage(ctx, toGenaiParts(req.Message)...)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to send chat message: %w", err)
	}

	text, usage := readResponse(resp, c.chatModel)
	if text == "" {
		return ChatResponse{Usage: usage}, ErrNoContent
	}
	return ChatResponse{Text: text, Usage: usage}, nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// readResponse joins the text parts of the first candidate.
func readResponse(resp *genai.GenerateContentResponse, model string) (string, shared.TokenUsage) {
	usage := shared.TokenUsage{Model: model}
	if resp == nil {
		return "", usage
	}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", usage
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), usage
}

func toGenaiParts(m Message) []genai.Part {
	parts := []genai.Part{genai.Text(m.Text)}
	if len(m.Image) > 0 {
		parts = append(parts, genai.ImageData("jpeg", m.Image))
	}
	return parts
}

func toGenaiHistory(history []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := m.Role
		if role == "" {
			role = "user"
		}
		out = append(out, &genai.Content{Role: role, Parts: toGenaiParts(m)})
	}
	return out
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiType(t SchemaType) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeInteger:
		return genai.TypeInteger
	case TypeNumber:
		return genai.TypeNumber
	case TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
