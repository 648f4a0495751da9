package domain

// RecipeSource tells where a saved recipe came from.
type RecipeSource string

const (
	SourceAI  RecipeSource = "ai"
	SourceWeb RecipeSource = "web"
)

// Recipe is a cookbook entry.
type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Timing       string       `json:"timing"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	ChefTip      string       `json:"chefTip"`
	WhyItWorks   string       `json:"whyItWorks"`
	Source       RecipeSource `json:"source"`
	ImageURL     string       `json:"image,omitempty"`
	WebURL       string       `json:"url,omitempty"`
}

// ChatRole is the author of a chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMode selects how the chef answers.
type ChatMode string

const (
	// ModeChefBrain is a reasoning conversation that may end in a recipe.
	ModeChefBrain ChatMode = "chef_brain"
	// ModeWebSearch answers from web search results with source links.
	ModeWebSearch ChatMode = "web_search"
)

// ChatMessage is one turn of a discovery chat. Messages live only in the
// caller's session and are never persisted.
type ChatMessage struct {
	ID            string   `json:"id"`
	Role          ChatRole `json:"role"`
	Text          string   `json:"text"`
	Image         string   `json:"image,omitempty"`
	Recipe        *Recipe  `json:"recipe,omitempty"`
	GroundingURLs []string `json:"groundingUrls,omitempty"`
}
