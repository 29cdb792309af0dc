package web_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/vbonduro/recipestudio/internal/recipegen"
	"github.com/vbonduro/recipestudio/internal/service"
	"github.com/vbonduro/recipestudio/internal/session"
	"github.com/vbonduro/recipestudio/internal/store"
	"github.com/vbonduro/recipestudio/internal/web"
	"github.com/vbonduro/recipestudio/internal/web/templates"
)

// scriptedGenerator replays a fixed chunk sequence, optionally ending
// with a terminal error.
type scriptedGenerator struct {
	chunks    []recipegen.Chunk
	streamErr error
	callErr   error
}

func (g *scriptedGenerator) GenerateStream(_ context.Context, _ string) (<-chan recipegen.StreamEvent, error) {
	if g.callErr != nil {
		return nil, g.callErr
	}
	ch := make(chan recipegen.StreamEvent, len(g.chunks)+1)
	for i := range g.chunks {
		ch <- recipegen.StreamEvent{Chunk: &g.chunks[i]}
	}
	if g.streamErr != nil {
		ch <- recipegen.StreamEvent{Err: g.streamErr}
	}
	close(ch)
	return ch, nil
}

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func toastChunks() []recipegen.Chunk {
	return []recipegen.Chunk{
		{Text: "## Cinnamon Toast\n\nSweet and quick.\n\n**Yields:** 1 serving\n**Prep time:** 2 minutes\n**Cook time:** 3 minutes\n\n**Ingredients:**\n\n* 1 slice of bread\n* cinnamon\n\n---\n\n**Step 1: Toast**\n\nToast the bread.\n"},
		{ImageData: pngBytes, ImageMIME: "image/png"},
	}
}

// newTestServer wires a real web.Server with an in-memory store and the
// provided generator. The returned session is the one the server uses.
func newTestServer(t *testing.T, gen recipegen.Generator) (*httptest.Server, *session.Session) {
	t.Helper()
	sess := session.New()
	svc := service.NewRecipeService(gen, store.NewRecipeStore(), slog.Default())
	srv := httptest.NewServer(web.NewServer(svc, sess, templates.FS, "", slog.Default()))
	t.Cleanup(srv.Close)
	return srv, sess
}

func postForm(t *testing.T, url string, values url.Values) *http.Response {
	t.Helper()
	resp, err := http.PostForm(url, values)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestIntegration_GenerateRendersRecipe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, _ := newTestServer(t, &scriptedGenerator{chunks: toastChunks()})

	resp := postForm(t, srv.URL+"/generate", url.Values{"prompt": {"toast please"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := readBody(t, resp)
	if !strings.Contains(body, "Cinnamon Toast") {
		t.Errorf("response does not contain recipe title:\n%s", body)
	}
	if !strings.Contains(body, "/images/0") {
		t.Errorf("response does not reference the recipe image:\n%s", body)
	}
}

func TestIntegration_GenerateRequiresInput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, _ := newTestServer(t, &scriptedGenerator{chunks: toastChunks()})

	resp := postForm(t, srv.URL+"/generate", url.Values{"prompt": {"   "}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty prompt with no ingredients, got %d", resp.StatusCode)
	}
}

func TestIntegration_GenerateWithIngredientsOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, sess := newTestServer(t, &scriptedGenerator{chunks: toastChunks()})
	sess.AddIngredient("bread")

	resp := postForm(t, srv.URL+"/generate", url.Values{"prompt": {""}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestIntegration_GenerateFailureKeepsState(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, sess := newTestServer(t, &scriptedGenerator{callErr: errors.New("auth failed")})
	sess.AddIngredient("bread")

	resp := postForm(t, srv.URL+"/generate", url.Values{"prompt": {"toast"}})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 on generation failure, got %d", resp.StatusCode)
	}
	if got := sess.Ingredients(); len(got) != 1 || got[0] != "bread" {
		t.Errorf("ingredients changed on failed generation: %v", got)
	}
	if sess.LastRecipe() != nil {
		t.Error("failed generation should not set a last recipe")
	}
}

func TestIntegration_IncompleteGenerationStillDisplays(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	gen := &scriptedGenerator{
		chunks:    []recipegen.Chunk{{Text: "## Half Done\n\nOnly a start."}},
		streamErr: errors.New("stream cut"),
	}
	srv, _ := newTestServer(t, gen)

	resp := postForm(t, srv.URL+"/generate", url.Values{"prompt": {"toast"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for partial generation, got %d", resp.StatusCode)
	}

	body := readBody(t, resp)
	if !strings.Contains(body, "Half Done") {
		t.Errorf("partial recipe not rendered:\n%s", body)
	}
	if !strings.Contains(body, "incomplete") {
		t.Errorf("incomplete banner missing:\n%s", body)
	}
}

func TestIntegration_SaveListDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, sess := newTestServer(t, &scriptedGenerator{chunks: toastChunks()})

	resp := postForm(t, srv.URL+"/generate", url.Values{"prompt": {"toast"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d", resp.StatusCode)
	}

	resp = postForm(t, srv.URL+"/recipes", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", resp.StatusCode)
	}

	listResp, err := http.Get(srv.URL + "/recipes")
	if err != nil {
		t.Fatalf("GET /recipes: %v", err)
	}
	t.Cleanup(func() { _ = listResp.Body.Close() })
	if body := readBody(t, listResp); !strings.Contains(body, "Cinnamon Toast") {
		t.Errorf("collection does not list saved recipe:\n%s", body)
	}

	recipeID := sess.LastRecipe().ID
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/recipes/"+recipeID, nil)
	if err != nil {
		t.Fatalf("build delete request: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /recipes/%s: %v", recipeID, err)
	}
	t.Cleanup(func() { _ = delResp.Body.Close() })
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", delResp.StatusCode)
	}

	listResp2, err := http.Get(srv.URL + "/recipes")
	if err != nil {
		t.Fatalf("GET /recipes: %v", err)
	}
	t.Cleanup(func() { _ = listResp2.Body.Close() })
	if body := readBody(t, listResp2); strings.Contains(body, "Cinnamon Toast") {
		t.Errorf("deleted recipe still listed:\n%s", body)
	}
}

func TestIntegration_SaveWithoutRecipe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, _ := newTestServer(t, &scriptedGenerator{})

	resp := postForm(t, srv.URL+"/recipes", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 when saving with no recipe, got %d", resp.StatusCode)
	}
}

func TestIntegration_RecipeImage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, sess := newTestServer(t, &scriptedGenerator{chunks: toastChunks()})

	resp := postForm(t, srv.URL+"/generate", url.Values{"prompt": {"toast"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d", resp.StatusCode)
	}

	recipeID := sess.LastRecipe().ID
	imgResp, err := http.Get(srv.URL + "/recipes/" + recipeID + "/images/0")
	if err != nil {
		t.Fatalf("GET image: %v", err)
	}
	t.Cleanup(func() { _ = imgResp.Body.Close() })

	if imgResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", imgResp.StatusCode)
	}
	if ct := imgResp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	data, _ := io.ReadAll(imgResp.Body)
	if string(data) != string(pngBytes) {
		t.Error("image bytes do not round-trip")
	}

	missing, err := http.Get(srv.URL + "/recipes/" + recipeID + "/images/9")
	if err != nil {
		t.Fatalf("GET missing image: %v", err)
	}
	t.Cleanup(func() { _ = missing.Body.Close() })
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for out-of-range image, got %d", missing.StatusCode)
	}
}

func TestIntegration_GenerateStreamSSE(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, _ := newTestServer(t, &scriptedGenerator{chunks: toastChunks()})

	resp := postForm(t, srv.URL+"/generate/stream", url.Values{"prompt": {"toast"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimPrefix(line, "event: "))
		}
	}

	var sawText, sawImage, sawDone bool
	for _, ev := range events {
		switch ev {
		case "text":
			sawText = true
		case "image":
			sawImage = true
		case "done":
			sawDone = true
		}
	}
	if !sawText || !sawImage || !sawDone {
		t.Errorf("missing SSE events, got %v", events)
	}
}

func TestIntegration_IngredientsAndPreferences(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, sess := newTestServer(t, &scriptedGenerator{chunks: toastChunks()})

	resp := postForm(t, srv.URL+"/ingredients", url.Values{"name": {"chicken"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add ingredient: expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "chicken") {
		t.Errorf("ingredient list missing chicken:\n%s", body)
	}

	// Duplicate add keeps a single entry.
	resp = postForm(t, srv.URL+"/ingredients", url.Values{"name": {"chicken"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("duplicate add: expected 200, got %d", resp.StatusCode)
	}
	if got := sess.Ingredients(); len(got) != 1 {
		t.Errorf("expected one ingredient after duplicate add, got %v", got)
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/ingredients/chicken", nil)
	if err != nil {
		t.Fatalf("build delete request: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE ingredient: %v", err)
	}
	t.Cleanup(func() { _ = delResp.Body.Close() })
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete ingredient: expected 200, got %d", delResp.StatusCode)
	}
	if got := sess.Ingredients(); len(got) != 0 {
		t.Errorf("expected empty ingredients, got %v", got)
	}

	resp = postForm(t, srv.URL+"/preferences", url.Values{"preferences": {"no dairy"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save preferences: expected 200, got %d", resp.StatusCode)
	}
	if sess.Preferences() != "no dairy" {
		t.Errorf("preferences not saved, got %q", sess.Preferences())
	}
}

func TestIntegration_UnitsToggle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, sess := newTestServer(t, &scriptedGenerator{chunks: toastChunks()})

	resp := postForm(t, srv.URL+"/settings/units", url.Values{"units": {"imperial"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set units: expected 200, got %d", resp.StatusCode)
	}
	if got := sess.Units(); string(got) != "imperial" {
		t.Errorf("expected imperial, got %q", got)
	}

	// Unknown values fall back to metric.
	resp = postForm(t, srv.URL+"/settings/units", url.Values{"units": {"bananas"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set units: expected 200, got %d", resp.StatusCode)
	}
	if got := sess.Units(); string(got) != "metric" {
		t.Errorf("expected metric fallback, got %q", got)
	}
}

func TestIntegration_GeneratorPageUsesStreamEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, _ := newTestServer(t, &scriptedGenerator{chunks: toastChunks()})

	resp, err := http.Get(srv.URL + "/generator")
	if err != nil {
		t.Fatalf("GET /generator: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	// The generator form drives the progress stream, not the blocking
	// endpoint.
	if body := readBody(t, resp); !strings.Contains(body, "/generate/stream") {
		t.Errorf("generator page does not reference the stream endpoint:\n%s", body)
	}
}

func TestIntegration_SettingsMasksInjectedAPIKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	// The key reaches the settings page through the constructor, not
	// the process environment.
	sess := session.New()
	svc := service.NewRecipeService(&scriptedGenerator{}, store.NewRecipeStore(), slog.Default())
	srv := httptest.NewServer(web.NewServer(svc, sess, templates.FS, "abcd12345678wxyz", slog.Default()))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/settings")
	if err != nil {
		t.Fatalf("GET /settings: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	body := readBody(t, resp)
	if !strings.Contains(body, "abcd********wxyz") {
		t.Errorf("settings page does not show the masked key:\n%s", body)
	}
	if strings.Contains(body, "abcd12345678wxyz") {
		t.Error("settings page leaks the full API key")
	}
}

func TestIntegration_PagesRender(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv, _ := newTestServer(t, &scriptedGenerator{chunks: toastChunks()})

	for _, path := range []string{"/generator", "/recipes", "/pantry", "/settings"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body := readBody(t, resp)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
		if !strings.Contains(body, "Recipe Studio") {
			t.Errorf("GET %s: page did not render base layout", path)
		}
	}
}
