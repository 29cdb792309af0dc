package recipegen

import "context"

// Chunk is one unit of a streamed model response: either a text fragment
// or one inline image with its MIME type. Exactly one variant is set.
type Chunk struct {
	Text      string
	ImageData []byte
	ImageMIME string
}

// IsImage reports whether the chunk carries inline image data.
func (c *Chunk) IsImage() bool {
	return len(c.ImageData) > 0
}

// StreamEvent is either a Chunk or an error emitted during streaming.
// An error is terminal: backends send at most one Err event and then
// close the channel.
type StreamEvent struct {
	Chunk *Chunk
	Err   error
}

// Generator produces a recipe as a lazy, finite, non-restartable stream
// of chunks. The returned channel is closed when the stream ends or the
// context is cancelled. Errors before any content was received are
// returned from the call itself; mid-stream failures arrive as a single
// Err event. There is no retry and no timeout beyond what the transport
// applies.
type Generator interface {
	GenerateStream(ctx context.Context, prompt string) (<-chan StreamEvent, error)
}

// PantryClassifier is an optional capability of a Generator: classify
// each recipe ingredient as already present in the user's pantry or
// not. The returned map covers exactly the recipe ingredient set. Used
// purely for presentation; callers must isolate its failures from
// recipe display.
type PantryClassifier interface {
	ClassifyPantry(ctx context.Context, recipeIngredients, pantry []string) (map[string]bool, error)
}
