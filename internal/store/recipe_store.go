package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vbonduro/recipestudio/internal/domain"
)

// RecipeStore holds saved recipes for the lifetime of the process.
// There is no durability: a restart empties the collection. List order
// is insertion order. The mutex exists because HTTP handlers may reach
// the store from concurrent requests even within a single session.
type RecipeStore struct {
	mu      sync.Mutex
	recipes map[string]*domain.Recipe
	order   []string
}

func NewRecipeStore() *RecipeStore {
	return &RecipeStore{
		recipes: make(map[string]*domain.Recipe),
	}
}

// Save stores the recipe and returns its ID, assigning one if the
// recipe has none. Saving a recipe whose ID is already present is a
// no-op; the stored copy wins.
func (s *RecipeStore) Save(r *domain.Recipe) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, exists := s.recipes[r.ID]; exists {
		return r.ID
	}
	s.recipes[r.ID] = r
	s.order = append(s.order, r.ID)
	return r.ID
}

// Get returns the recipe with the given ID, or nil if it is not stored.
func (s *RecipeStore) Get(id string) *domain.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipes[id]
}

// List returns all saved recipes in insertion order.
func (s *RecipeStore) List() []*domain.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Recipe, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.recipes[id])
	}
	return out
}

// Delete removes the recipe with the given ID.
func (s *RecipeStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.recipes[id]; !exists {
		return fmt.Errorf("recipe not found")
	}
	delete(s.recipes, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports the number of saved recipes.
func (s *RecipeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
