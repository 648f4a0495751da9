package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"yourkitchen/internal/config"
	"yourkitchen/internal/shared"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiREST talks to the generateContent endpoint directly. It is used for
// the calls that need request fields the SDK does not expose: search
// grounding and image output.
type GeminiREST struct {
	apiKey      string
	baseURL     string
	searchModel string
	imageModel  string
	client      *http.Client
}

// NewGeminiREST creates a REST client from the configuration.
func NewGeminiREST(cfg *config.Config) *GeminiREST {
	return &GeminiREST{
		apiKey:      cfg.GeminiAPIKey,
		baseURL:     geminiBaseURL,
		searchModel: cfg.GeminiTextModel,
		imageModel:  cfg.GeminiImageModel,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

type restInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type restPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *restInlineData `json:"inlineData,omitempty"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restRequest struct {
	SystemInstruction *restContent             `json:"systemInstruction,omitempty"`
	Contents          []restContent            `json:"contents"`
	Tools             []map[string]interface{} `json:"tools,omitempty"`
	GenerationConfig  map[string]interface{}   `json:"generationConfig,omitempty"`
}

type restResponse struct {
	Candidates []struct {
		Content           restContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func messageContent(m Message) restContent {
	role := m.Role
	if role == "" {
		role = "user"
	}
	parts := []restPart{{Text: m.Text}}
	if len(m.Image) > 0 {
		parts = append(parts, restPart{InlineData: &restInlineData{
			MIMEType: "image/jpeg",
			Data:     base64.StdEncoding.EncodeToString(m.Image),
		}})
	}
	return restContent{Role: role, Parts: parts}
}

// Chat sends the history and the new message with the google_search tool
// enabled. The reply carries the grounding URLs.
func (c *GeminiREST) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	body := restRequest{
		Tools: []map[string]interface{}{{"google_search": map[string]interface{}{}}},
	}
	if req.System != "" {
		body.SystemInstruction = &restContent{Parts: []restPart{{Text: req.System}}}
	}
	for _, h := range req.History {
		body.Contents = append(body.Contents, messageContent(h))
	}
	body.Contents = append(body.Contents, messageContent(req.Message))

	model := c.searchModel
	resp, err := c.generate(ctx, model, body)
	if err != nil {
		return ChatResponse{}, err
	}

	out := ChatResponse{Usage: resp.usage(model)}
	if len(resp.Candidates) == 0 {
		return out, ErrNoContent
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	out.Text = sb.String()

	if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
		seen := make(map[string]bool)
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
				continue
			}
			seen[chunk.Web.URI] = true
			out.GroundingURLs = append(out.GroundingURLs, chunk.Web.URI)
		}
	}

	if out.Text == "" {
		return out, ErrNoContent
	}
	return out, nil
}

// GenerateImage asks the image model for one 4:3 picture.
func (c *GeminiREST) GenerateImage(ctx context.Context, prompt, size string) (ImageResponse, error) {
	body := restRequest{
		Contents: []restContent{{Role: "user", Parts: []restPart{{Text: prompt}}}},
		GenerationConfig: map[string]interface{}{
			"responseModalities": []string{"TEXT", "IMAGE"},
			"imageConfig": map[string]string{
				"aspectRatio": "4:3",
				"imageSize":   size,
			},
		},
	}

	resp, err := c.generate(ctx, c.imageModel, body)
	if err != nil {
		return ImageResponse{}, err
	}

	usage := resp.usage(c.imageModel)
	if len(resp.Candidates) == 0 {
		return ImageResponse{Usage: usage}, ErrNoContent
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return ImageResponse{Usage: usage}, fmt.Errorf("failed to decode image data: %w", err)
		}
		return ImageResponse{MIMEType: p.InlineData.MIMEType, Data: data, Usage: usage}, nil
	}
	return ImageResponse{Usage: usage}, fmt.Errorf("no image generated")
}

func (r *restResponse) usage(model string) shared.TokenUsage {
	return shared.TokenUsage{
		PromptTokens:     r.UsageMetadata.PromptTokenCount,
		CompletionTokens: r.UsageMetadata.CandidatesTokenCount,
		TotalTokens:      r.UsageMetadata.TotalTokenCount,
		Model:            model,
	}
}

func (c *GeminiREST) generate(ctx context.Context, model string, body restRequest) (*restResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var out restResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
