package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/recipestudio/internal/assemble"
	"github.com/vbonduro/recipestudio/internal/domain"
	"github.com/vbonduro/recipestudio/internal/prompt"
	"github.com/vbonduro/recipestudio/internal/recipegen"
	"github.com/vbonduro/recipestudio/internal/session"
	"github.com/vbonduro/recipestudio/internal/store"
)

// Display fallbacks applied when the model output carried no parseable
// metadata, matching what users saw in earlier versions of the app.
const (
	defaultTitle       = "Delicious Recipe"
	defaultDescription = "A tasty recipe made with your ingredients"
	defaultPrepTime    = "15 minutes"
	defaultCookTime    = "30 minutes"
	defaultServings    = 2
)

// ErrNoContent is returned when a generation failed before any content
// arrived. Prior session state is left untouched.
var ErrNoContent = errors.New("generation produced no content")

type RecipeService struct {
	generator recipegen.Generator
	store     *store.RecipeStore
	logger    *slog.Logger
}

func NewRecipeService(gen recipegen.Generator, st *store.RecipeStore, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		generator: gen,
		store:     st,
		logger:    logger,
	}
}

// Generate builds a prompt from the session state and freeText, streams
// the model response, and assembles it into a recipe. The result
// replaces the session's unsaved last recipe; a failed generation
// leaves all prior state untouched.
func (s *RecipeService) Generate(ctx context.Context, sess *session.Session, freeText string) (*domain.Recipe, error) {
	p := s.buildPrompt(sess, freeText)
	s.logger.Info("generation started", "prompt_len", len(p), "ingredients", len(sess.Ingredients()))

	events, err := s.generator.GenerateStream(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to start generation: %w", err)
	}

	res := assemble.Assemble(events)
	recipe, err := s.finishRecipe(ctx, sess, freeText, res)
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// GenerationEvent is one step of a streaming generation: a text delta,
// the ordinal of a newly assembled image (ImageBlock >= 0, usable in
// image URLs), the finished recipe on the terminal event, or a terminal
// error.
type GenerationEvent struct {
	TextDelta  string
	ImageBlock int
	Recipe     *domain.Recipe
	Err        error
}

// GenerateStream runs a generation while reporting progress on the
// returned channel, closed when the generation finishes. The caller
// must drain it. The final event carries either the recipe or an error;
// as with Generate, failure leaves prior session state untouched.
func (s *RecipeService) GenerateStream(ctx context.Context, sess *session.Session, freeText string) (<-chan GenerationEvent, error) {
	p := s.buildPrompt(sess, freeText)
	s.logger.Info("generation stream started", "prompt_len", len(p), "ingredients", len(sess.Ingredients()))

	events, err := s.generator.GenerateStream(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to start generation: %w", err)
	}

	out := make(chan GenerationEvent, 16)
	go func() {
		defer close(out)

		asm := assemble.New()
		for ev := range events {
			if ev.Err != nil {
				s.logger.Error("generation stream failed", "error", ev.Err)
				asm.MarkIncomplete()
				break
			}
			delta, imageIdx := asm.Add(ev.Chunk)
			if delta != "" {
				out <- GenerationEvent{TextDelta: delta, ImageBlock: -1}
			}
			if imageIdx >= 0 {
				out <- GenerationEvent{ImageBlock: imageIdx}
			}
		}

		recipe, err := s.finishRecipe(ctx, sess, freeText, asm.Result())
		if err != nil {
			out <- GenerationEvent{Err: err, ImageBlock: -1}
			return
		}
		out <- GenerationEvent{Recipe: recipe, ImageBlock: -1}
	}()

	return out, nil
}

func (s *RecipeService) buildPrompt(sess *session.Session, freeText string) string {
	return prompt.Build(prompt.Request{
		FreeText:    freeText,
		Ingredients: sess.Ingredients(),
		Preferences: sess.Preferences(),
		Units:       sess.Units(),
	})
}

// finishRecipe turns an assembly result into a stored-in-session
// recipe: metadata parse, display defaults, optional pantry
// classification.
func (s *RecipeService) finishRecipe(ctx context.Context, sess *session.Session, freeText string, res assemble.Result) (*domain.Recipe, error) {
	if len(res.Blocks) == 0 {
		return nil, ErrNoContent
	}

	meta := assemble.ParseMetadata(res.FullText)
	recipe := &domain.Recipe{
		ID:          uuid.NewString(),
		Prompt:      freeText,
		Title:       orDefault(meta.Title, defaultTitle),
		Description: orDefault(meta.Description, defaultDescription),
		PrepTime:    orDefault(meta.PrepTime, defaultPrepTime),
		CookTime:    orDefault(meta.CookTime, defaultCookTime),
		Servings:    meta.Servings,
		Ingredients: meta.Ingredients,
		Blocks:      res.Blocks,
		Incomplete:  res.Incomplete,
		CreatedAt:   time.Now(),
	}
	if recipe.Servings == 0 {
		recipe.Servings = defaultServings
	}

	s.classifyPantry(ctx, sess, recipe)

	sess.SetLastRecipe(recipe)
	s.logger.Info("generation complete",
		"recipe_id", recipe.ID,
		"title", recipe.Title,
		"blocks", len(recipe.Blocks),
		"incomplete", recipe.Incomplete,
	)
	return recipe, nil
}

// classifyPantry enriches the recipe with pantry availability when the
// backend supports it. Its failure is logged and swallowed: pantry
// colouring must never block recipe display.
func (s *RecipeService) classifyPantry(ctx context.Context, sess *session.Session, recipe *domain.Recipe) {
	classifier, ok := s.generator.(recipegen.PantryClassifier)
	if !ok || len(recipe.Ingredients) == 0 {
		return
	}
	pantry := sess.Ingredients()
	if len(pantry) == 0 {
		return
	}

	result, err := classifier.ClassifyPantry(ctx, recipe.Ingredients, pantry)
	if err != nil {
		s.logger.Warn("pantry classification failed", "recipe_id", recipe.ID, "error", err)
		return
	}
	recipe.Pantry = result
}

// SaveLast moves the session's unsaved recipe into the collection.
func (s *RecipeService) SaveLast(sess *session.Session) (*domain.Recipe, error) {
	recipe := sess.LastRecipe()
	if recipe == nil {
		return nil, errors.New("no recipe to save")
	}
	s.store.Save(recipe)
	s.logger.Info("recipe saved", "recipe_id", recipe.ID, "title", recipe.Title)
	return recipe, nil
}

func (s *RecipeService) ListRecipes() []*domain.Recipe {
	return s.store.List()
}

// GetRecipe resolves id against the saved collection first, then the
// session's unsaved last recipe, so image URLs work for both.
func (s *RecipeService) GetRecipe(sess *session.Session, id string) *domain.Recipe {
	if r := s.store.Get(id); r != nil {
		return r
	}
	if last := sess.LastRecipe(); last != nil && last.ID == id {
		return last
	}
	return nil
}

func (s *RecipeService) DeleteRecipe(id string) error {
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	s.logger.Info("recipe deleted", "recipe_id", id)
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
