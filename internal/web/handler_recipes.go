package web

import (
	"net/http"
	"strconv"

	"github.com/vbonduro/recipestudio/internal/domain"
)

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes := s.service.ListRecipes()
	data := map[string]any{
		"Recipes":   recipes,
		"ActiveNav": "recipes",
	}
	if err := s.renderPage(w, data,
		"base.html", "pages/recipes.html", "partials/recipe_card.html",
	); err != nil {
		s.logger.Error("render recipes page failed", "error", err)
	}
}

func (s *Server) handleSaveRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.service.SaveLast(s.session)
	if err != nil {
		http.Error(w, "no recipe to save", http.StatusBadRequest)
		return
	}

	if err := s.renderPartial(w, "partials/recipe_card.html", recipe); err != nil {
		s.logger.Error("render recipe card failed", "error", err)
	}
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe := s.service.GetRecipe(s.session, r.PathValue("id"))
	if recipe == nil {
		http.NotFound(w, r)
		return
	}

	if err := s.renderPartial(w, "partials/recipe.html", recipe); err != nil {
		s.logger.Error("render recipe failed", "error", err)
	}
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteRecipe(r.PathValue("id")); err != nil {
		http.Error(w, "recipe not found", http.StatusNotFound)
		return
	}

	w.Header().Set("HX-Redirect", "/recipes")
	w.WriteHeader(http.StatusOK)
}

// handleRecipeImage serves the n-th image block of a recipe (saved or
// the session's unsaved last one) with its original MIME type.
func (s *Server) handleRecipeImage(w http.ResponseWriter, r *http.Request) {
	recipe := s.service.GetRecipe(s.session, r.PathValue("id"))
	if recipe == nil {
		http.NotFound(w, r)
		return
	}

	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 0 {
		http.Error(w, "invalid image index", http.StatusBadRequest)
		return
	}

	idx := 0
	for _, block := range recipe.Blocks {
		if block.Kind != domain.BlockImage {
			continue
		}
		if idx == n {
			w.Header().Set("Content-Type", block.ImageMIME)
			if _, err := w.Write(block.ImageData); err != nil {
				s.logger.Error("write image failed", "recipe_id", recipe.ID, "error", err)
			}
			return
		}
		idx++
	}
	http.NotFound(w, r)
}
