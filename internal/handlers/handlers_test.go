package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/James9446/patricia-james-sub001/internal/auth"
	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/database/dbtest"
	"github.com/James9446/patricia-james-sub001/internal/models"
	"github.com/James9446/patricia-james-sub001/internal/rsvp"
	"github.com/James9446/patricia-james-sub001/internal/storage"
	"github.com/James9446/patricia-james-sub001/web"
)

const (
	testAdminToken = "test-admin-token"
	testMaxUpload  = 256 << 10
)

// testServer holds a test server and its dependencies.
type testServer struct {
	server *httptest.Server
	db     *database.DB
	store  storage.Store
}

// apiClient is a cookie-keeping client, one per simulated browser.
type apiClient struct {
	t      *testing.T
	ts     *testServer
	http   *http.Client
	bearer string
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupTestServer wires the full router against a temp SQLite database and a
// temp local blob store, the same way main does.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db := dbtest.Open(t)
	require.NoError(t, LoadTemplates(web.Templates()))
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	router := NewRouter(Deps{
		DB:       db,
		RSVP:     rsvp.New(db, nil),
		Sessions: auth.NewSessions(db, auth.Config{AdminToken: testAdminToken}),
		Store:    store,
		Static:   web.Static(),
		Event: Event{
			Couple:   "Patricia & James",
			Date:     "June 14, 2025",
			Venue:    "The Old Orchard",
			Location: time.UTC,
		},
		MaxUploadBytes: testMaxUpload,
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return &testServer{server: ts, db: db, store: store}
}

func (ts *testServer) newClient(t *testing.T) *apiClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &apiClient{
		t:  t,
		ts: ts,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (ts *testServer) adminClient(t *testing.T) *apiClient {
	c := ts.newClient(t)
	c.bearer = testAdminToken
	return c
}

func (c *apiClient) send(req *http.Request) (int, envelope) {
	c.t.Helper()
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &env), "body: %s", raw)
	}
	return resp.StatusCode, env
}

// call sends body as JSON (when non-nil) and decodes the envelope.
func (c *apiClient) call(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.ts.server.URL+path, r)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

// upload posts a multipart photo form.
func (c *apiClient) upload(filename string, data []byte, fields map[string]string) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photo", filename)
	require.NoError(c.t, err)
	_, err = fw.Write(data)
	require.NoError(c.t, err)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	require.NoError(c.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, c.ts.server.URL+"/api/photos", &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req)
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v), "data: %s", env.Data)
}

func createGuest(t *testing.T, db *database.DB, name string, plusOne bool) *models.User {
	t.Helper()
	u, err := database.CreateGuest(context.Background(), db, name, plusOne, nil)
	require.NoError(t, err)
	return u
}

func linkPartners(t *testing.T, db *database.DB, a, b *models.User) {
	t.Helper()
	require.NoError(t, database.LinkPartners(context.Background(), db, a.ID, b.ID))
}

// registeredClient invites name, registers it and returns its logged-in client.
func registeredClient(t *testing.T, ts *testServer, name, email string) (*apiClient, *models.User) {
	t.Helper()
	guest := createGuest(t, ts.db, name, false)
	c := ts.newClient(t)
	status, env := c.call(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	return c, guest
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
