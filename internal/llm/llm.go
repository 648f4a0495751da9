package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"yourkitchen/internal/shared"
)

// ErrNoContent is returned when a model answers without any usable part.
var ErrNoContent = errors.New("no content generated")

// ErrSearchUnsupported is returned by chat generators without search grounding.
var ErrSearchUnsupported = errors.New("search grounding is not supported by this client")

// Request is one structured generation call.
type Request struct {
	// System is sent as the system instruction when set.
	System string
	// Prompt is the user turn.
	Prompt string
	// Schema constrains the reply to JSON of this shape when set.
	Schema      *Schema
	Temperature float32
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text (usually JSON) from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, req Request) (ContentResponse, error)
}

// Message is one prior chat turn.
type Message struct {
	Role  string // "user" or "model"
	Text  string
	Image []byte // JPEG bytes, optional
}

// ChatRequest is a multi-turn chat call.
type ChatRequest struct {
	System  string
	History []Message
	Message Message
	// Search enables web search grounding.
	Search bool
}

// ChatResponse is the reply of a chat call.
type ChatResponse struct {
	Text          string
	GroundingURLs []string
	Usage         shared.TokenUsage
}

// ChatGenerator answers multi-turn chats.
type ChatGenerator interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// ChatRouter sends search grounded chats to one generator and all other
// chats to another.
type ChatRouter struct {
	chat   ChatGenerator
	search ChatGenerator
}

// NewChatRouter creates a ChatRouter.
func NewChatRouter(chat, search ChatGenerator) *ChatRouter {
	return &ChatRouter{chat: chat, search: search}
}

// Chat forwards the request by its Search flag.
func (r *ChatRouter) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if req.Search {
		return r.search.Chat(ctx, req)
	}
	return r.chat.Chat(ctx, req)
}

// ImageResponse holds one generated image.
type ImageResponse struct {
	MIMEType string
	Data     []byte
	Usage    shared.TokenUsage
}

// ImageGenerator renders an image from a text prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, size string) (ImageResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// SchemaType is the JSON type of a schema node.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider neutral subset of OpenAPI schema used to constrain
// JSON replies.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// String returns the schema as indented JSON, for embedding in prompts.
func (s *Schema) String() string {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// Object is a shorthand for an object schema where every listed property is
// required.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// ArrayOf is a shorthand for an array schema.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// String is a shorthand for a string schema with a description.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Integer is a shorthand for an integer schema with a description.
func Integer(description string) *Schema {
	return &Schema{Type: TypeInteger, Description: description}
}

// ExtractJSON trims markdown code fences that some models wrap around JSON
// replies even when JSON output was requested.
func ExtractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
