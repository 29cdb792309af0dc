package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vbonduro/recipestudio/internal/domain"
	"github.com/vbonduro/recipestudio/internal/service"
	"github.com/vbonduro/recipestudio/internal/session"
)

type Server struct {
	service   *service.RecipeService
	session   *session.Session
	templates embed.FS
	apiKey    string
	mux       *http.ServeMux
	tmplFuncs template.FuncMap
	logger    *slog.Logger
}

// NewServer builds the HTTP surface. apiKey is only displayed (masked)
// on the settings page; the generator backends hold their own copies.
func NewServer(svc *service.RecipeService, sess *session.Session, tmpl embed.FS, apiKey string, logger *slog.Logger) *Server {
	s := &Server{
		service:   svc,
		session:   sess,
		templates: tmpl,
		apiKey:    apiKey,
		mux:       http.NewServeMux(),
		logger:    logger,
		tmplFuncs: template.FuncMap{
			"inc":        func(i int) int { return i + 1 },
			"paragraphs": paragraphs,
			"maskKey":    maskKey,
			"blockViews": blockViews,
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/generator", http.StatusSeeOther)
	})
	s.mux.HandleFunc("GET /generator", s.handleGeneratorPage)
	s.mux.HandleFunc("POST /generate", s.handleGenerate)
	s.mux.HandleFunc("POST /generate/stream", s.handleGenerateStream)
	s.mux.HandleFunc("POST /generator/clear", s.handleClearLast)
	s.mux.HandleFunc("GET /recipes", s.handleListRecipes)
	s.mux.HandleFunc("POST /recipes", s.handleSaveRecipe)
	s.mux.HandleFunc("GET /recipes/{id}", s.handleGetRecipe)
	s.mux.HandleFunc("DELETE /recipes/{id}", s.handleDeleteRecipe)
	s.mux.HandleFunc("GET /recipes/{id}/images/{n}", s.handleRecipeImage)
	s.mux.HandleFunc("GET /pantry", s.handlePantryPage)
	s.mux.HandleFunc("POST /ingredients", s.handleAddIngredient)
	s.mux.HandleFunc("DELETE /ingredients/{name}", s.handleRemoveIngredient)
	s.mux.HandleFunc("POST /ingredients/clear", s.handleClearIngredients)
	s.mux.HandleFunc("POST /preferences", s.handleSavePreferences)
	s.mux.HandleFunc("GET /settings", s.handleSettingsPage)
	s.mux.HandleFunc("POST /settings/units", s.handleSetUnits)
}

// securityHeaders sets standard security response headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; "+
				"font-src https://fonts.gstatic.com; "+
				"img-src 'self' data:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s,
		ReadTimeout: 60 * time.Second,
		// Generation streams stay open for the whole model call, which
		// can run minutes for image-heavy recipes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}

// renderPartial parses and executes a single named partial template.
// The file must contain exactly one {{define "name"}}...{{end}} block.
func (s *Server) renderPartial(w http.ResponseWriter, file string, data any) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, file)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// ParseFS registers both the file-basename template and any {{define}}
	// blocks. Find the {{define}} template: it is the one whose name is
	// neither "" nor the file basename.
	basename := file
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		basename = file[idx+1:]
	}
	for _, t := range tmpl.Templates() {
		if n := t.Name(); n != "" && n != basename {
			return t.Execute(w, data)
		}
	}
	return tmpl.ExecuteTemplate(w, basename, data)
}

// paragraphs splits recipe text on blank lines for rendering as <p>
// elements, keeping single newlines inside a paragraph.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// blockView pairs a content block with its image ordinal so templates
// can build /recipes/{id}/images/{n} URLs without counting.
type blockView struct {
	Kind       domain.BlockKind
	Text       string
	ImageIndex int
}

func blockViews(blocks []domain.ContentBlock) []blockView {
	views := make([]blockView, 0, len(blocks))
	images := 0
	for _, b := range blocks {
		v := blockView{Kind: b.Kind, Text: b.Text, ImageIndex: -1}
		if b.Kind == domain.BlockImage {
			v.ImageIndex = images
			images++
		}
		views = append(views, v)
	}
	return views
}

// maskKey obscures an API key for display, keeping the first and last
// four characters.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
