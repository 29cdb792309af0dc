// Package prompt builds the natural-language prompt sent to the recipe
// model from the user's free text, ingredient list, preferences, and
// unit setting.
package prompt

import (
	"fmt"
	"strings"

	"github.com/vbonduro/recipestudio/internal/domain"
)

// FramingText is the system framing prepended to every generation
// prompt. It is embedded in the prompt itself rather than sent as a
// system turn because the image-generation model variants reject a
// system role. The markdown layout it asks for is what
// assemble.ParseMetadata expects back.
const FramingText = `You are a skilled chef and recipe creator. Your task is to generate detailed, step-by-step recipes with images for each step.

Follow these guidelines:
1. Create a recipe title, description, prep time, cook time, and serving size.
2. List all ingredients with precise measurements.
3. Provide clear, detailed instructions for each step.
4. Generate realistic and helpful images for each step showing the process.
5. Format the output in Markdown with the following structure:

## [Recipe Title]

[Brief recipe description]

**Yields:** [Number of servings]
**Prep time:** [Preparation time]
**Cook time:** [Cooking time]

**Ingredients:**

* [Ingredient 1]
* [Ingredient 2]
...

---

**Step 1: [Step Title]**

[Step description]

---

**Step 2: [Step Title]**

[Step description]

---

... and so on.

Make your recipe instructions practical, clear, and easy to follow.`

// Request carries everything the builder folds into one prompt string.
type Request struct {
	FreeText    string
	Ingredients []string
	Preferences string
	Units       domain.UnitSystem
}

// Build assembles the complete prompt. It is a pure function of its
// input: same request, same string. An empty request still yields a
// well-formed prompt; the model may ask for clarification.
func Build(req Request) string {
	var b strings.Builder

	b.WriteString(FramingText)
	b.WriteString("\n\n")

	if text := strings.TrimSpace(req.FreeText); text != "" {
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	if len(req.Ingredients) > 0 {
		fmt.Fprintf(&b, "Ingredients to use: %s\n", strings.Join(req.Ingredients, ", "))
	}

	if req.Preferences != "" {
		fmt.Fprintf(&b, "Preferences: %s\n", req.Preferences)
	}

	units := req.Units
	if units == "" {
		units = domain.UnitsMetric
	}
	fmt.Fprintf(&b, "Please use %s units for measurements.\n", units)
	b.WriteString("Generate a detailed recipe with step-by-step instructions and images for each step.")

	return b.String()
}
