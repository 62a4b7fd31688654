package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/Chetan2520/RathWale-Backend/internal/invoice"
	"github.com/Chetan2520/RathWale-Backend/internal/service"
)

const compressionLevel = 5

type InvoiceRenderer interface {
	Render(w io.Writer, doc invoice.Document) error
}

// Deps are the collaborators built once in main.
type Deps struct {
	Entries        *service.EntryService
	Auth           *service.AuthService
	RequireAuth    func(http.Handler) http.Handler
	Invoices       *invoice.Builder
	Renderer       InvoiceRenderer
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Handler struct {
	router   *chi.Mux
	entries  *service.EntryService
	auth     *service.AuthService
	invoices *invoice.Builder
	renderer InvoiceRenderer
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(d Deps) *Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	compressor := middleware.NewCompressor(compressionLevel, "application/json", "text/plain")
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	router.Use(compressor.Handler)

	h := &Handler{
		router:   router,
		entries:  d.Entries,
		auth:     d.Auth,
		invoices: d.Invoices,
		renderer: d.Renderer,
		validate: newValidator(),
		logger:   d.Logger.With("component", "http"),
	}

	h.registerRoutes(d.RequireAuth)
	return h
}

func (h *Handler) registerRoutes(requireAuth func(http.Handler) http.Handler) {
	h.router.Get("/", h.Root)
	h.router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(requireAuth).Get("/me", h.Me)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEntry)
				r.Put("/", h.UpdateEntry)
				r.Delete("/", h.DeleteEntry)
				r.Get("/pdf", h.EntryPDF)
			})
		})
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Bookkeeping API running"))
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
