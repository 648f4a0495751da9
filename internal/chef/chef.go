// Package chef runs the discovery chat, turns conversations into recipe cards
// and renders dish photos.
package chef

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"

	"yourkitchen/internal/domain"
	"yourkitchen/internal/llm"
	"yourkitchen/internal/questionnaire"
	"yourkitchen/internal/shared"

	"github.com/google/uuid"
)

//go:embed chat_prompt.md
var chatPrompt string

//go:embed search_prompt.md
var searchPrompt string

//go:embed recipe_card_prompt.md
var recipeCardPrompt string

var recipeCardTemplate = template.Must(template.New("RecipeCard").Parse(recipeCardPrompt))

const imagePrompt = "Professional food photography, michelin star plating, studio lighting, 8k resolution. Dish: %s"

var (
	// ErrInvalidMode is returned for a chat mode other than chef_brain or web_search.
	ErrInvalidMode = errors.New("invalid chat mode")
	// ErrEmptyMessage is returned when a chat turn has neither text nor image.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrInvalidSize is returned for an image size other than 1K, 2K or 4K.
	ErrInvalidSize = errors.New("image size must be 1K, 2K or 4K")
	// ErrNoRecipe is returned when a recipe card reply has no usable recipe.
	ErrNoRecipe = errors.New("no recipe in reply")
)

// Image sizes accepted by GenerateMealImage.
var ImageSizes = []string{"1K", "2K", "4K"}

// DefaultImageSize is used when no size is given.
const DefaultImageSize = "1K"

var (
	fencedJSON  = regexp.MustCompile("```json\\s*(\\{[\\s\\S]*?\\})\\s*```")
	bareRecipe  = regexp.MustCompile(`(\{[\s\S]*"recipe"[\s\S]*\})`)
	fencedBlock = regexp.MustCompile("```json[\\s\\S]*```")
)

var recipeCardSchema = llm.Object(map[string]*llm.Schema{
	"recipe": llm.Object(map[string]*llm.Schema{
		"name":         llm.String("Recipe name"),
		"timing":       llm.String("Total time, e.g. 35 min"),
		"ingredients":  llm.ArrayOf(llm.String("Ingredient with amount")),
		"instructions": llm.ArrayOf(llm.String("One step")),
		"chefTip":      llm.String("A professional tip"),
		"whyItWorks":   llm.String("Why the technique works"),
	}, "name", "timing", "ingredients", "instructions", "chefTip", "whyItWorks"),
}, "recipe")

// Chef talks to the chat, text and image models.
type Chef struct {
	chat    llm.ChatGenerator
	textGen llm.TextGenerator
	images  llm.ImageGenerator
}

// NewChef creates a new Chef.
func NewChef(chat llm.ChatGenerator, textGen llm.TextGenerator, images llm.ImageGenerator) *Chef {
	return &Chef{chat: chat, textGen: textGen, images: images}
}

// ChatInput is one discovery chat turn.
type ChatInput struct {
	History []domain.ChatMessage
	Message string
	// Image is base64 JPEG data, optionally as a data URI.
	Image   string
	Mode    domain.ChatMode
	Answers []domain.Answer
}

type recipeEnvelope struct {
	Recipe *domain.Recipe `json:"recipe"`
}

// Chat answers one turn. In chef_brain mode a recipe JSON block in the reply
// becomes the message recipe and is removed from the text. In web_search
// mode the reply carries the grounding source URLs.
func (c *Chef) Chat(ctx context.Context, in ChatInput) (*domain.ChatMessage, shared.AgentMeta, error) {
	var system, agent string
	switch in.Mode {
	case domain.ModeChefBrain:
		system, agent = shared.SystemInstruction+"\n\n"+chatPrompt, shared.AgentChef
	case domain.ModeWebSearch:
		system, agent = shared.SystemInstruction+" "+strings.TrimSpace(searchPrompt), shared.AgentWebSearch
	default:
		return nil, shared.AgentMeta{}, fmt.Errorf("%w: %q", ErrInvalidMode, in.Mode)
	}
	if strings.TrimSpace(in.Message) == "" && in.Image == "" {
		return nil, shared.AgentMeta{AgentName: agent}, ErrEmptyMessage
	}

	history := make([]llm.Message, 0, len(in.History)+1)
	for _, h := range in.History {
		history = append(history, llm.Message{Role: string(h.Role), Text: h.Text, Image: decodeImage(h.Image)})
	}
	if len(in.Answers) > 0 {
		history = append(history, llm.Message{
			Role: string(domain.RoleUser),
			Text: "User Profile Context:\n" + questionnaire.FormatAnswers(in.Answers, "User Constraint "),
		})
	}

	start := time.Now()
	resp, err := c.chat.Chat(ctx, llm.ChatRequest{
		System:  system,
		History: history,
		Message: llm.Message{Role: string(domain.RoleUser), Text: in.Message, Image: decodeImage(in.Image)},
		Search:  in.Mode == domain.ModeWebSearch,
	})
	meta := shared.NewAgentMeta(agent, resp.Usage, start)
	if err != nil {
		return nil, meta, fmt.Errorf("chat failed: %w", err)
	}

	msg := &domain.ChatMessage{ID: uuid.NewString(), Role: domain.RoleModel, Text: resp.Text}
	if in.Mode == domain.ModeWebSearch {
		msg.GroundingURLs = resp.GroundingURLs
		return msg, meta, nil
	}
	msg.Text, msg.Recipe = ExtractRecipe(resp.Text)
	return msg, meta, nil
}

// ExtractRecipe looks for a {"recipe": {...}} object in a chat reply. It
// returns the reply without the JSON and the parsed recipe, or the reply
// and nil when nothing parses.
func ExtractRecipe(text string) (string, *domain.Recipe) {
	match := fencedJSON.FindStringSubmatch(text)
	if match == nil {
		match = bareRecipe.FindStringSubmatch(text)
	}
	if match == nil {
		return strings.TrimSpace(fencedBlock.ReplaceAllString(text, "")), nil
	}

	var env recipeEnvelope
	if err := json.Unmarshal([]byte(match[1]), &env); err != nil || env.Recipe == nil || env.Recipe.Name == "" {
		return strings.TrimSpace(fencedBlock.ReplaceAllString(text, "")), nil
	}

	rest := fencedBlock.ReplaceAllString(text, "")
	if rest == text {
		rest = strings.Replace(text, match[1], "", 1)
	}
	return strings.TrimSpace(rest), stamp(env.Recipe)
}

// FinalizeRecipe turns a chat transcript into one recipe card.
func (c *Chef) FinalizeRecipe(ctx context.Context, transcript []domain.ChatMessage) (*domain.Recipe, shared.AgentMeta, error) {
	start := time.Now()

	var buf bytes.Buffer
	if err := recipeCardTemplate.Execute(&buf, struct{ Messages []domain.ChatMessage }{transcript}); err != nil {
		return nil, shared.AgentMeta{AgentName: shared.AgentRecipeCard}, fmt.Errorf("failed to execute recipe card template: %w", err)
	}

	resp, err := c.textGen.GenerateContent(ctx, llm.Request{
		Prompt: buf.String(),
		Schema: recipeCardSchema,
	})
	meta := shared.NewAgentMeta(shared.AgentRecipeCard, resp.Usage, start)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to generate recipe card: %w", err)
	}

	var env recipeEnvelope
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &env); err != nil {
		return nil, meta, fmt.Errorf("failed to parse recipe card: %w. Response: %s", err, resp.Content)
	}
	if env.Recipe == nil || env.Recipe.Name == "" {
		return nil, meta, ErrNoRecipe
	}
	return stamp(env.Recipe), meta, nil
}

// GenerateMealImage renders a photo of the described dish and returns it as
// a data URI.
func (c *Chef) GenerateMealImage(ctx context.Context, description, size string) (string, shared.AgentMeta, error) {
	if size == "" {
		size = DefaultImageSize
	}
	if !validSize(size) {
		return "", shared.AgentMeta{AgentName: shared.AgentImage}, ErrInvalidSize
	}

	start := time.Now()
	resp, err := c.images.GenerateImage(ctx, fmt.Sprintf(imagePrompt, description), size)
	meta := shared.NewAgentMeta(shared.AgentImage, resp.Usage, start)
	if err != nil {
		return "", meta, fmt.Errorf("failed to generate image: %w", err)
	}

	mime := resp.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(resp.Data), meta, nil
}

func stamp(r *domain.Recipe) *domain.Recipe {
	r.ID = uuid.NewString()
	r.Source = domain.SourceAI
	return r
}

func validSize(size string) bool {
	for _, s := range ImageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// decodeImage accepts raw base64 or a data URI. Undecodable input is dropped.
func decodeImage(s string) []byte {
	if s == "" {
		return nil
	}
	if _, data, ok := strings.Cut(s, ";base64,"); ok {
		s = data
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
