package assemble

import (
	"strconv"
	"strings"
)

// Metadata is the recipe header information recovered from the model's
// markdown output: title, description, timing, servings, and the
// ingredient list. Fields the text did not contain are left zero;
// callers apply display defaults.
type Metadata struct {
	Title       string
	Description string
	PrepTime    string
	CookTime    string
	Servings    int
	Ingredients []string
}

// ParseMetadata extracts recipe metadata from the accumulated text of a
// generation. The model is prompted to follow a fixed markdown layout
// ("## title", "**Prep time:**" lines, a bulleted "**Ingredients:**"
// section), but output drifts, so every extraction tolerates absence.
func ParseMetadata(raw string) Metadata {
	var m Metadata

	m.Title = parseTitle(raw)
	m.PrepTime = parseField(raw, "**Prep time:**")
	m.CookTime = parseField(raw, "**Cook time:**")
	m.Servings = parseServings(raw)
	m.Description = parseDescription(raw)
	m.Ingredients = parseIngredients(raw)

	return m
}

// parseTitle returns the text of the first "## " heading line.
func parseTitle(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "## "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// parseField returns the remainder of the line following marker.
func parseField(raw, marker string) string {
	_, after, found := strings.Cut(raw, marker)
	if !found {
		return ""
	}
	line, _, _ := strings.Cut(after, "\n")
	return strings.TrimSpace(line)
}

// parseServings reads the first integer after "**Servings:**" or
// "**Yields:**".
func parseServings(raw string) int {
	for _, marker := range []string{"**Servings:**", "**Yields:**"} {
		field := parseField(raw, marker)
		if field == "" {
			continue
		}
		first := strings.Fields(field)
		if len(first) == 0 {
			continue
		}
		if n, err := strconv.Atoi(first[0]); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// parseDescription returns the prose between the title heading and the
// first metadata or divider line.
func parseDescription(raw string) string {
	lines := strings.Split(raw, "\n")
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "## ") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}

	var parts []string
	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "**") || strings.HasPrefix(line, "---") || strings.HasPrefix(line, "##") {
			break
		}
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// parseIngredients collects the bullet lines of the "**Ingredients:**"
// section, stopping at the first step or divider.
func parseIngredients(raw string) []string {
	_, after, found := strings.Cut(raw, "**Ingredients:**")
	if !found {
		return nil
	}
	if section, _, ok := strings.Cut(after, "**Step"); ok {
		after = section
	} else if section, _, ok := strings.Cut(after, "---"); ok {
		after = section
	}

	var ingredients []string
	for _, line := range strings.Split(after, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "-") {
			continue
		}
		item := strings.TrimSpace(strings.TrimLeft(line, "*- "))
		if item != "" {
			ingredients = append(ingredients, item)
		}
	}
	return ingredients
}
