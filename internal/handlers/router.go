package handlers

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/James9446/patricia-james-sub001/internal/auth"
	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/metrics"
	"github.com/James9446/patricia-james-sub001/internal/rsvp"
	"github.com/James9446/patricia-james-sub001/internal/storage"
)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	DB       *database.DB
	RSVP     *rsvp.Service
	Sessions *auth.Sessions
	Store    storage.Store
	Recorder PhotoRecorder
	Logger   *slog.Logger
	Static   fs.FS
	Event    Event

	AllowedOrigins []string
	MaxUploadBytes int64
}

// NewRouter wires every route of the site.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Recorder == nil {
		d.Recorder = metrics.Recorder{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(NotFoundPage(d.Event))
	r.Get("/healthz", Healthz(d.DB))
	r.Handle("/metrics", metrics.Handler())
	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}
	r.Get("/media/*", ServeMedia(d.Store))

	r.Group(func(r chi.Router) {
		r.Use(LoadUser(d.Sessions))
		r.Get("/", IndexPage(d.Event))
		r.Get("/gallery", GalleryPage(d.DB, d.Event))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Use(LoadUser(d.Sessions))
		r.NotFound(NotFoundPage(d.Event))
		r.MethodNotAllowed(MethodNotAllowed)

		r.Get("/guests/lookup", LookupGuest(d.RSVP))
		r.Post("/rsvps", SubmitRSVP(d.RSVP))
		r.With(RequireUser).Get("/rsvps/me", MyRSVP(d.RSVP))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", Register(d.DB, d.Sessions))
			r.Post("/login", Login(d.DB, d.Sessions))
			r.Post("/logout", Logout(d.Sessions))
			r.With(RequireUser).Get("/me", Me)
		})

		r.Get("/categories", ListCategories(d.DB))
		r.Route("/photos", func(r chi.Router) {
			r.Get("/", ListPhotos(d.DB))
			r.With(RequireUser).Post("/", UploadPhoto(d.DB, d.Store, d.Recorder, d.MaxUploadBytes))

			r.Route("/{photoID}", func(r chi.Router) {
				r.Get("/", GetPhoto(d.DB))
				r.With(RequireUser).Patch("/", UpdatePhoto(d.DB))
				r.Delete("/", DeletePhoto(d.DB, d.Store, d.Sessions))

				r.With(RequireUser).Post("/likes", LikePhoto(d.DB))
				r.With(RequireUser).Delete("/likes", UnlikePhoto(d.DB))

				r.Get("/comments", ListComments(d.DB))
				r.With(RequireUser).Post("/comments", PostComment(d.DB))
				r.With(RequireUser).Patch("/comments/{commentID}", UpdateComment(d.DB))
				r.Delete("/comments/{commentID}", DeleteComment(d.DB, d.Sessions))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(d.Sessions))
			r.Get("/guests", AdminListGuests(d.DB))
			r.Post("/guests", AdminCreateGuest(d.DB))
			r.Patch("/guests/{guestID}", AdminUpdateGuest(d.DB))
			r.Delete("/guests/{guestID}", AdminDeleteGuest(d.DB))
			r.Put("/guests/{guestID}/partner", AdminSetPartner(d.DB))
			r.Get("/rsvps", AdminListRSVPs(d.DB))
			r.Get("/stats", AdminStats(d.DB))
		})
	})

	return r
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			switch {
			case ww.Status() >= 500:
				level = slog.LevelError
			case r.URL.Path == "/healthz" || r.URL.Path == "/metrics":
				level = slog.LevelDebug
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"size", humanize.Bytes(uint64(ww.BytesWritten())),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
