// Package gemini generates recipes through the Gemini API, requesting
// interleaved text and inline image output.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/vbonduro/recipestudio/internal/recipegen"
)

// Generator implements recipegen.Generator and
// recipegen.PantryClassifier against the Gemini API. A client is
// created per call: connections are acquired and released per
// generation, with no pooling contract.
type Generator struct {
	apiKey      string
	model       string
	pantryModel string
	baseURL     string // overridden in tests
}

func New(apiKey, model, pantryModel string) *Generator {
	return &Generator{
		apiKey:      apiKey,
		model:       model,
		pantryModel: pantryModel,
	}
}

func (g *Generator) newClient(ctx context.Context) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions.BaseURL = g.baseURL
	}
	return genai.NewClient(ctx, cfg)
}

// exampleTurn is a fixed few-shot exchange sent before the user's
// prompt, anchoring the markdown layout the assembler parses.
func exampleTurn() []*genai.Content {
	return []*genai.Content{
		genai.NewContentFromText("I want a very simple snack with bread and butter.", genai.RoleUser),
		genai.NewContentFromText(`## Buttered Toast

Golden toast with melted butter, ready in minutes.

**Yields:** 1 serving
**Prep time:** 1 minute
**Cook time:** 3 minutes

**Ingredients:**

* 1 slice of bread
* 10 g butter

---

**Step 1: Toast the bread**

Toast the slice of bread until golden brown.

---

**Step 2: Butter it**

Spread the butter over the hot toast and serve.`, genai.RoleModel),
	}
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}

// GenerateStream sends the prompt and streams back chunks. The response
// is requested with both text and image modalities; inline image parts
// become image chunks, text parts become text chunks, and parts with
// neither are skipped.
func (g *Generator) GenerateStream(ctx context.Context, prompt string) (<-chan recipegen.StreamEvent, error) {
	if g.apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := g.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	contents := append(exampleTurn(), genai.NewContentFromText(prompt, genai.RoleUser))
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		SafetySettings:     safetySettings(),
	}

	// Buffer of 16 keeps the reader goroutine from stalling between
	// chunk emissions while the assembler catches up.
	ch := make(chan recipegen.StreamEvent, 16)

	go func() {
		defer close(ch)
		for resp, err := range client.Models.GenerateContentStream(ctx, g.model, contents, config) {
			if err != nil {
				// Cancellation is an error too: the stream ended before
				// its natural conclusion, and consumers must see that.
				ch <- recipegen.StreamEvent{Err: fmt.Errorf("gemini stream: %w", err)}
				return
			}
			for _, chunk := range chunksOf(resp) {
				ch <- recipegen.StreamEvent{Chunk: chunk}
			}
		}
	}()

	return ch, nil
}

// chunksOf translates one streamed response into chunks, skipping
// malformed or empty parts rather than failing.
func chunksOf(resp *genai.GenerateContentResponse) []*recipegen.Chunk {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return nil
	}

	var chunks []*recipegen.Chunk
	for _, part := range content.Parts {
		switch {
		case part == nil:
		case part.InlineData != nil && len(part.InlineData.Data) > 0:
			chunks = append(chunks, &recipegen.Chunk{
				ImageData: part.InlineData.Data,
				ImageMIME: part.InlineData.MIMEType,
			})
		case part.Text != "":
			chunks = append(chunks, &recipegen.Chunk{Text: part.Text})
		}
	}
	return chunks
}

// ClassifyPantry asks the pantry model to split the recipe ingredients
// into available and unavailable via a function call. When the model
// does not produce a usable call, a local substring match stands in.
// Transport failures are returned to the caller, which must not let
// them block recipe display.
func (g *Generator) ClassifyPantry(ctx context.Context, recipeIngredients, pantry []string) (map[string]bool, error) {
	if g.apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := g.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	prompt := fmt.Sprintf(
		"I have a recipe with these ingredients: %s\n\n"+
			"I have these ingredients available in my pantry: %s\n\n"+
			"Please categorize the recipe ingredients into 'available' and 'unavailable' based on what I have in my pantry.",
		strings.Join(recipeIngredients, ", "), strings.Join(pantry, ", "))

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        "categorize_ingredients",
				Description: "Categorizes recipe ingredients into available and unavailable based on the user's pantry.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"available": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
						"unavailable": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
					},
					Required: []string{"available", "unavailable"},
				},
			}},
		}},
	}

	resp, err := client.Models.GenerateContent(ctx, g.pantryModel, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini pantry classification: %w", err)
	}

	if fc := functionCallOf(resp); fc != nil && fc.Name == "categorize_ingredients" {
		if m, ok := pantryFromArgs(fc.Args, recipeIngredients); ok {
			return m, nil
		}
	}

	return MatchLocally(recipeIngredients, pantry), nil
}

func functionCallOf(resp *genai.GenerateContentResponse) *genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.FunctionCall != nil {
			return part.FunctionCall
		}
	}
	return nil
}

// pantryFromArgs builds the result map from the function call's
// "available" list. Keys the model invented are dropped and keys it
// omitted default to unavailable, so the map covers exactly the recipe
// ingredient set.
func pantryFromArgs(args map[string]any, recipeIngredients []string) (map[string]bool, bool) {
	raw, ok := args["available"].([]any)
	if !ok {
		return nil, false
	}

	available := make(map[string]bool, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			available[s] = true
		}
	}

	result := make(map[string]bool, len(recipeIngredients))
	for _, ing := range recipeIngredients {
		result[ing] = available[ing]
	}
	return result, true
}

// MatchLocally classifies ingredients by case-insensitive substring
// match against the pantry. It is the fallback when the model declines
// to call the function.
func MatchLocally(recipeIngredients, pantry []string) map[string]bool {
	result := make(map[string]bool, len(recipeIngredients))
	for _, ing := range recipeIngredients {
		result[ing] = false
		for _, have := range pantry {
			if have != "" && strings.Contains(strings.ToLower(ing), strings.ToLower(have)) {
				result[ing] = true
				break
			}
		}
	}
	return result
}
