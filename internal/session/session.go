// Package session holds the mutable state of one user's interaction:
// the ingredient list, preference text, unit setting, and the most
// recent unsaved generation. It is passed explicitly into handlers and
// services rather than living in ambient globals, so the same logic
// runs identically under test.
package session

import (
	"slices"
	"sync"

	"github.com/vbonduro/recipestudio/internal/domain"
)

type Session struct {
	mu          sync.Mutex
	ingredients []string
	preferences string
	units       domain.UnitSystem
	lastRecipe  *domain.Recipe
}

func New() *Session {
	return &Session{units: domain.UnitsMetric}
}

// AddIngredient appends name to the ingredient list, deduplicating by
// exact text. It reports whether the ingredient was added.
func (s *Session) AddIngredient(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.ingredients, name) {
		return false
	}
	s.ingredients = append(s.ingredients, name)
	return true
}

// RemoveIngredient deletes name from the list, reporting whether it was
// present.
func (s *Session) RemoveIngredient(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.ingredients, name)
	if i < 0 {
		return false
	}
	s.ingredients = slices.Delete(s.ingredients, i, i+1)
	return true
}

func (s *Session) ClearIngredients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingredients = nil
}

// Ingredients returns a copy of the ingredient list in insertion order.
func (s *Session) Ingredients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ingredients)
}

// SetPreferences overwrites the preference text wholesale.
func (s *Session) SetPreferences(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences = text
}

func (s *Session) Preferences() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preferences
}

func (s *Session) SetUnits(u domain.UnitSystem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = u
}

func (s *Session) Units() domain.UnitSystem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.units
}

// SetLastRecipe replaces the unsaved result of the most recent
// generation. Regeneration replaces it wholesale.
func (s *Session) SetLastRecipe(r *domain.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRecipe = r
}

func (s *Session) LastRecipe() *domain.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRecipe
}

func (s *Session) ClearLastRecipe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRecipe = nil
}
