package web

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	maxIngredientLen  = 100
	maxPreferencesLen = 1000
)

func (s *Server) handlePantryPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Ingredients": s.session.Ingredients(),
		"Preferences": s.session.Preferences(),
		"ActiveNav":   "pantry",
	}
	if err := s.renderPage(w, data,
		"base.html", "pages/pantry.html", "partials/ingredient_list.html",
	); err != nil {
		s.logger.Error("render pantry page failed", "error", err)
	}
}

func (s *Server) handleAddIngredient(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, "ingredient required", http.StatusBadRequest)
		return
	}
	if len(name) > maxIngredientLen {
		http.Error(w, "ingredient too long", http.StatusBadRequest)
		return
	}

	// Duplicates are silently kept as a single entry; the refreshed
	// list shows the existing one.
	s.session.AddIngredient(name)
	s.renderIngredientList(w)
}

func (s *Server) handleRemoveIngredient(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(r.PathValue("name"))
	if err != nil {
		http.Error(w, "invalid ingredient", http.StatusBadRequest)
		return
	}

	if !s.session.RemoveIngredient(name) {
		http.Error(w, "ingredient not found", http.StatusNotFound)
		return
	}
	s.renderIngredientList(w)
}

func (s *Server) handleClearIngredients(w http.ResponseWriter, r *http.Request) {
	s.session.ClearIngredients()
	s.renderIngredientList(w)
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.FormValue("preferences"))
	if len(text) > maxPreferencesLen {
		http.Error(w, "preferences too long", http.StatusBadRequest)
		return
	}

	s.session.SetPreferences(text)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("Preferences saved")); err != nil {
		s.logger.Error("write preferences response failed", "error", err)
	}
}

func (s *Server) renderIngredientList(w http.ResponseWriter) {
	if err := s.renderPartial(w, "partials/ingredient_list.html", s.session.Ingredients()); err != nil {
		s.logger.Error("render ingredient list failed", "error", err)
	}
}
