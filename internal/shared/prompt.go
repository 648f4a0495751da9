package shared

import (
	_ "embed"
	"strings"
)

//go:embed system_prompt.md
var systemPrompt string

// SystemInstruction is the chef persona sent with every generation call.
var SystemInstruction = strings.TrimSpace(systemPrompt)
