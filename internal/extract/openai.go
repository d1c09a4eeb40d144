package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/petalrow/bloom/internal/memory"
)

// parserPrompt instructs the model to emit the flat update JSON.
const parserPrompt = `You extract flower-shopping preferences from natural language and return ONLY valid JSON, no other text.

Fields (include only what the user mentioned):
{
  "colors": ["red", "white"],
  "color_logic": "AND",
  "flower_types": ["rose", "lily"],
  "occasions": ["wedding"],
  "budget": {"min": 50, "max": 100, "around": null},
  "effort_level": "Ready To Go",
  "season": "spring",
  "quantity": "100 stems",
  "product_type": "bouquet",
  "exclude_colors": ["pink"],
  "exclude_flower_types": ["rose"],
  "exclude_occasions": ["wedding"],
  "exclude_effort_levels": ["DIY From Scratch"],
  "exclude_product_types": ["centerpiece"]
}

Rules:
- Budget: "under $X" -> {"max": X}; "$X to $Y" -> {"min": X, "max": Y}; "around $X" -> {"around": X}; a bare "my budget is $X" means {"max": X}.
- Colors: "red and white" -> ["red","white"] with "AND"; "red or white" -> with "OR". Keep family phrases like "cool colors" as-is.
- Singularize flower names: roses -> rose, lilies -> lily, peonies -> peony.
- Effort: ready-made -> "Ready To Go"; kit -> "DIY In A Kit"; from scratch -> "DIY From Scratch".
- Season: keep season names, month names, or dates like "May 12" as plain text.
- Negatives: "no roses" -> {"exclude_flower_types": ["rose"]}; "don't want pink" -> {"exclude_colors": ["pink"]}.
- Removal only when the user explicitly asks: "remove the budget" -> {"REMOVE_budget": true}; "clear everything" or "reset" -> {"REMOVE_all": true}. Other removable fields: colors, flower_types, occasions, season, quantity, effort_level, product_type.
- "for a wedding" adds an occasion, it never removes one.
- Leave unmentioned fields out entirely.`

// OpenAIConfig holds settings for the OpenAI-backed extractor.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional custom endpoint
	Model   string
}

// OpenAIExtractor implements Extractor with an OpenAI chat model at
// temperature zero. The client library owns timeouts and retries.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

// NewOpenAIExtractor creates an extractor using the official SDK.
func NewOpenAIExtractor(cfg OpenAIConfig) (*OpenAIExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIExtractor{client: &client, model: cfg.Model}, nil
}

// Extract sends one user message through the parser model and decodes
// the update. Any failure aborts the turn before memory is touched.
func (e *OpenAIExtractor) Extract(ctx context.Context, text string) (memory.Update, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(e.model),
		Temperature: openai.Float(0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(parserPrompt),
			openai.UserMessage("USER_INPUT: " + text + "\n\nExtract preferences:"),
		},
	})
	if err != nil {
		return memory.Update{}, fmt.Errorf("parse user input: %w", err)
	}
	if len(resp.Choices) == 0 {
		return memory.Update{}, fmt.Errorf("parse user input: empty completion")
	}

	content := stripFences(resp.Choices[0].Message.Content)
	u, err := DecodeUpdate([]byte(content))
	if err != nil {
		return memory.Update{}, fmt.Errorf("parse user input: %w", err)
	}
	return u, nil
}

// stripFences removes a markdown code fence the model sometimes wraps
// around its JSON despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
