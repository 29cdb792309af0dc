package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const maxPromptLen = 2000

// validateGenerateInput trims the prompt and enforces that either a
// prompt or some ingredients exist. Core components never see empty
// input; validation lives here.
func (s *Server) validateGenerateInput(w http.ResponseWriter, r *http.Request) (string, bool) {
	freeText := strings.TrimSpace(r.FormValue("prompt"))
	if len(freeText) > maxPromptLen {
		http.Error(w, "prompt too long", http.StatusBadRequest)
		return "", false
	}
	if freeText == "" && len(s.session.Ingredients()) == 0 {
		http.Error(w, "enter a prompt or add ingredients first", http.StatusBadRequest)
		return "", false
	}
	return freeText, true
}

// handleGenerate runs a blocking generation and responds with the
// rendered recipe partial. Regeneration is the same request again: the
// previous unsaved recipe is replaced wholesale.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	freeText, ok := s.validateGenerateInput(w, r)
	if !ok {
		return
	}

	recipe, err := s.service.Generate(r.Context(), s.session, freeText)
	if err != nil {
		http.Error(w, "generation failed", http.StatusBadGateway)
		s.logger.Error("generate failed", "error", err)
		return
	}

	if err := s.renderPartial(w, "partials/recipe.html", recipe); err != nil {
		s.logger.Error("render recipe failed", "error", err)
	}
}

// handleGenerateStream runs a generation and reports progress as SSE:
// "text" events carry a JSON {"text": delta}, "image" events a JSON
// {"index": n}, and the stream ends with "done" {"id": recipeID} or
// "error" {}.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	freeText, ok := s.validateGenerateInput(w, r)
	if !ok {
		return
	}

	// Detached context: abandoning the page must not kill the model
	// call; the finished recipe simply lands in the session unseen.
	events, err := s.service.GenerateStream(context.WithoutCancel(r.Context()), s.session, freeText)
	if err != nil {
		http.Error(w, "generation failed", http.StatusBadGateway)
		s.logger.Error("generate stream failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, canFlush := w.(http.Flusher)
	writeEvent := func(name string, payload any) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			return false
		}
		if _, err := w.Write([]byte("event: " + name + "\ndata: " + string(data) + "\n\n")); err != nil {
			return false
		}
		if canFlush {
			flusher.Flush()
		}
		return true
	}

	for ev := range events {
		if r.Context().Err() != nil {
			// Client went away; keep draining so the generation finishes.
			continue
		}
		switch {
		case ev.Err != nil:
			s.logger.Error("generation stream error", "error", ev.Err)
			writeEvent("error", map[string]string{})
		case ev.Recipe != nil:
			writeEvent("done", map[string]string{"id": ev.Recipe.ID})
		case ev.TextDelta != "":
			if !writeEvent("text", map[string]string{"text": ev.TextDelta}) {
				continue
			}
		case ev.ImageBlock >= 0:
			writeEvent("image", map[string]int{"index": ev.ImageBlock})
		}
	}
}

// handleClearLast drops the unsaved last recipe. Saved recipes and
// session inputs are untouched.
func (s *Server) handleClearLast(w http.ResponseWriter, r *http.Request) {
	s.session.ClearLastRecipe()
	w.Header().Set("HX-Redirect", "/generator")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGeneratorPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"LastRecipe":  s.session.LastRecipe(),
		"Ingredients": s.session.Ingredients(),
		"Preferences": s.session.Preferences(),
		"ActiveNav":   "generator",
	}
	if err := s.renderPage(w, data,
		"base.html", "pages/generator.html", "partials/recipe.html",
	); err != nil {
		s.logger.Error("render generator page failed", "error", err)
	}
}
