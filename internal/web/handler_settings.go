package web

import (
	"net/http"

	"github.com/vbonduro/recipestudio/internal/domain"
)

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Units":     s.session.Units(),
		"APIKey":    s.apiKey,
		"ActiveNav": "settings",
	}
	if err := s.renderPage(w, data,
		"base.html", "pages/settings.html",
	); err != nil {
		s.logger.Error("render settings page failed", "error", err)
	}
}

func (s *Server) handleSetUnits(w http.ResponseWriter, r *http.Request) {
	units := domain.ParseUnitSystem(r.FormValue("units"))
	s.session.SetUnits(units)

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("Units set to " + string(units))); err != nil {
		s.logger.Error("write units response failed", "error", err)
	}
}
