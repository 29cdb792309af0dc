package domain

import "time"

// UnitSystem selects the measurement units recipes are written in.
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// ParseUnitSystem maps a user-supplied string onto a UnitSystem,
// defaulting to metric for anything unrecognised.
func ParseUnitSystem(s string) UnitSystem {
	if s == string(UnitsImperial) {
		return UnitsImperial
	}
	return UnitsMetric
}

// BlockKind tags the two variants of a ContentBlock.
type BlockKind string

const (
	BlockText  BlockKind = "text"
	BlockImage BlockKind = "image"
)

// ContentBlock is one displayable unit of a generated recipe: a text
// segment or an inline image. Exactly one variant is populated; render
// code must switch on Kind exhaustively.
type ContentBlock struct {
	Kind      BlockKind
	Text      string
	ImageData []byte
	ImageMIME string
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockText, Text: text}
}

func ImageBlock(data []byte, mimeType string) ContentBlock {
	return ContentBlock{Kind: BlockImage, ImageData: data, ImageMIME: mimeType}
}

// Recipe is one assembled generation result. Blocks are in display
// order, matching the order content arrived from the model. Incomplete
// is set when the model stream ended early; the partial recipe is still
// displayable. Pantry, when present, maps each recipe ingredient to
// whether the user already has it.
type Recipe struct {
	ID          string
	Prompt      string
	Title       string
	Description string
	PrepTime    string
	CookTime    string
	Servings    int
	Ingredients []string
	Blocks      []ContentBlock
	Incomplete  bool
	Pantry      map[string]bool
	CreatedAt   time.Time
}

// ImageCount returns the number of image blocks, used by templates to
// build per-image URLs.
func (r *Recipe) ImageCount() int {
	n := 0
	for _, b := range r.Blocks {
		if b.Kind == BlockImage {
			n++
		}
	}
	return n
}
