package handlers

import (
	"io"
	"io/fs"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James9446/patricia-james-sub001/web"
)

func getPage(t *testing.T, c *apiClient, path string) (int, string) {
	t.Helper()
	resp, err := c.http.Get(c.ts.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestPages(t *testing.T) {
	ts := setupTestServer(t)
	anon := ts.newClient(t)

	t.Run("index", func(t *testing.T) {
		status, body := getPage(t, anon, "/")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Patricia &amp; James")
		assert.Contains(t, body, "The Old Orchard")
		assert.Contains(t, body, `id="register-form"`)
	})

	t.Run("gallery", func(t *testing.T) {
		owner, _ := registeredClient(t, ts, "Gallery Owner", "gallery@example.com")
		status, _ := owner.upload("g.png", testPNG(t, 3, 3), map[string]string{"caption": "Line one\nLine <two>"})
		require.Equal(t, http.StatusCreated, status)

		status, body := getPage(t, anon, "/gallery")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "Ceremony")
		assert.Contains(t, body, "Line one<br>Line &lt;two&gt;")
		assert.NotContains(t, body, `id="upload-form"`)

		status, body = getPage(t, owner, "/gallery?category=ceremony")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, `id="upload-form"`)
		assert.Contains(t, body, "No photos yet.")
	})

	t.Run("not found", func(t *testing.T) {
		status, body := getPage(t, anon, "/nope")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, body, "Page Not Found")

		status, env := anon.call(http.MethodGet, "/api/nope", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.False(t, env.Success)
	})

	t.Run("static and health", func(t *testing.T) {
		status, body := getPage(t, anon, "/static/app.js")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "/api/guests/lookup")

		status, env := anon.call(http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok", env.Message)

		status, body = getPage(t, anon, "/metrics")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, "wedding_http_requests_total")
	})
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Not Attending", TitleCase("not_attending"))
	assert.Equal(t, "Getting Ready", TitleCase("getting ready"))
	assert.Equal(t, "", TitleCase(""))
}

func TestNl2br(t *testing.T) {
	assert.Equal(t, "a<br>&lt;b&gt;", string(Nl2br("a\n<b>")))
}

func TestLoadTemplatesRequiresLayout(t *testing.T) {
	err := LoadTemplates(fstest.MapFS{
		"index.html": {Data: []byte(`{{template "layout" .}}`)},
	})
	assert.Error(t, err)
}

func TestLoadTemplatesRejectsUndefinedPartial(t *testing.T) {
	err := LoadTemplates(fstest.MapFS{
		"layout.html": {Data: []byte(`{{define "layout"}}{{if .}}{{template "nav" .}}{{end}}{{template "content" .}}{{end}}`)},
		"index.html":  {Data: []byte(`{{template "layout" .}}{{define "content"}}hi{{end}}`)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nav"`)
}

func TestEmbeddedTemplatesIncludePartials(t *testing.T) {
	_, err := fs.Stat(web.Templates(), "_nav.html")
	require.NoError(t, err)
	require.NoError(t, LoadTemplates(web.Templates()))
}
