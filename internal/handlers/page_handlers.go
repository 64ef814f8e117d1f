package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/models"
)

// Event is the wedding information shown on every page.
type Event struct {
	Couple   string
	Date     string
	Venue    string
	RSVPBy   string
	Location *time.Location
}

type pageData struct {
	Title       string
	Event       Event
	User        *models.User
	CurrentYear int

	Categories []*models.Category
	Category   string
	Photos     []*models.Photo

	StatusCode int
	ErrorTitle string
	Message    string
}

func newPageData(r *http.Request, event Event, title string) *pageData {
	return &pageData{
		Title:       title,
		Event:       event,
		User:        CurrentUser(r.Context()),
		CurrentYear: time.Now().Year(),
	}
}

// IndexPage renders the landing page with the RSVP form.
func IndexPage(event Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RenderTemplate(w, http.StatusOK, "index.html", newPageData(r, event, event.Couple))
	}
}

// GalleryPage renders the first page of the gallery. Further pages are
// loaded by the browser from the JSON API.
func GalleryPage(db *database.DB, event Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := newPageData(r, event, "Gallery - "+event.Couple)
		data.Category = strings.TrimSpace(r.URL.Query().Get("category"))

		var err error
		if data.Categories, err = database.ListCategories(r.Context(), db); err != nil {
			renderInternalError(w, r, event, err)
			return
		}
		data.Photos, err = database.ListPhotos(r.Context(), db, database.PhotoFilter{
			CategorySlug: data.Category,
			ViewerID:     viewerID(r),
			Limit:        defaultPageSize,
		})
		if err != nil {
			renderInternalError(w, r, event, err)
			return
		}
		withURL(data.Photos...)
		RenderTemplate(w, http.StatusOK, "gallery.html", data)
	}
}

func renderInternalError(w http.ResponseWriter, r *http.Request, event Event, err error) {
	_, message := errorStatus(err)
	writeErrorLog(r, err)
	RenderErrorPage(w, r, event, http.StatusInternalServerError, "Something went wrong", message)
}

// NotFoundPage answers unknown API paths with JSON and everything else with
// the HTML error page.
func NotFoundPage(event Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
			writeJSON(w, http.StatusNotFound, Response{Message: "not found"})
			return
		}
		RenderErrorPage(w, r, event, http.StatusNotFound, "Page Not Found",
			"The page you are looking for does not exist.")
	}
}

// MethodNotAllowed answers with the JSON envelope.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, Response{Message: "method not allowed"})
}

// Healthz reports whether the database answers.
func Healthz(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			writeErrorLog(r, err)
			writeJSON(w, http.StatusServiceUnavailable, Response{Message: "database unavailable"})
			return
		}
		writeMessage(w, http.StatusOK, "ok")
	}
}
