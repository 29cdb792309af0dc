// Package assemble turns the chunk stream produced by a recipegen
// backend into the ordered content blocks of a recipe.
package assemble

import (
	"strings"

	"github.com/vbonduro/recipestudio/internal/domain"
	"github.com/vbonduro/recipestudio/internal/recipegen"
)

// Result is the outcome of assembling one chunk stream. Blocks preserve
// arrival order exactly. Incomplete is set when the stream ended with
// an error; the accumulated blocks are still returned so a partial
// generation is not lost. FullText is the concatenation of all text
// chunks, used for metadata parsing.
type Result struct {
	Blocks     []domain.ContentBlock
	Incomplete bool
	FullText   string
}

// Assembler folds chunks into content blocks one at a time. Consecutive
// text chunks are coalesced into a single text block; every image chunk
// becomes its own image block. No lookahead, no reordering, no
// deduplication. An image arriving before any text is kept as-is: an
// unusual but valid ordering, not an error.
type Assembler struct {
	blocks     []domain.ContentBlock
	text       strings.Builder
	images     int
	incomplete bool
}

func New() *Assembler {
	return &Assembler{}
}

// Add folds one chunk into the block sequence. It reports the text
// appended (empty for image chunks) and the ordinal of a newly created
// image block among all image blocks so far, or -1. The ordinal is what
// image URLs are keyed by. Nil and empty chunks are skipped.
func (a *Assembler) Add(c *recipegen.Chunk) (textDelta string, imageIndex int) {
	imageIndex = -1
	if c == nil {
		return "", imageIndex
	}

	switch {
	case c.IsImage():
		a.blocks = append(a.blocks, domain.ImageBlock(c.ImageData, c.ImageMIME))
		imageIndex = a.images
		a.images++
	case c.Text != "":
		a.text.WriteString(c.Text)
		if n := len(a.blocks); n > 0 && a.blocks[n-1].Kind == domain.BlockText {
			a.blocks[n-1].Text += c.Text
		} else {
			a.blocks = append(a.blocks, domain.TextBlock(c.Text))
		}
		textDelta = c.Text
	}
	return textDelta, imageIndex
}

// MarkIncomplete records that the stream terminated before its natural
// end. The blocks accumulated so far remain valid.
func (a *Assembler) MarkIncomplete() {
	a.incomplete = true
}

func (a *Assembler) Result() Result {
	return Result{
		Blocks:     a.blocks,
		Incomplete: a.incomplete,
		FullText:   a.text.String(),
	}
}

// Assemble consumes events until the channel closes and returns the
// assembled result. It is a pure function of the event sequence: the
// same sequence always yields the same result. A terminal stream error
// marks the result incomplete rather than discarding it.
func Assemble(events <-chan recipegen.StreamEvent) Result {
	a := New()
	for ev := range events {
		if ev.Err != nil {
			a.MarkIncomplete()
			break
		}
		a.Add(ev.Chunk)
	}
	return a.Result()
}
