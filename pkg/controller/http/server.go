package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-kurita/promptreg/pkg/domain/interfaces"
	"github.com/m-kurita/promptreg/pkg/utils/safe"
)

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	promptCtrl *PromptController
}

// Options is a functional option for Server
type Options func(*Server)

// WithPromptController sets the prompt registry controller
func WithPromptController(ctrl *PromptController) Options {
	return func(s *Server) {
		s.promptCtrl = ctrl
	}
}

// New creates a new HTTP server
func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Apply middleware
	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	// Register routes
	if s.promptCtrl != nil {
		r.Route("/api/prompts", func(r chi.Router) {
			r.Post("/", s.promptCtrl.HandleCreatePrompt)
			r.Get("/", s.promptCtrl.HandleSearchPrompts)

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.promptCtrl.HandleGetPrompt)
				r.Patch("/", s.promptCtrl.HandleUpdatePrompt)
				r.Delete("/", s.promptCtrl.HandleDeletePrompt)

				r.Route("/versions", func(r chi.Router) {
					r.Post("/", s.promptCtrl.HandleCreateVersion)
					r.Get("/", s.promptCtrl.HandleSearchVersions)

					r.Route("/{version}", func(r chi.Router) {
						r.Get("/", s.promptCtrl.HandleGetVersion)
						r.Patch("/", s.promptCtrl.HandleUpdateVersion)
						r.Delete("/", s.promptCtrl.HandleDeleteVersion)

						r.Put("/tags/{key}", s.promptCtrl.HandleSetVersionTag)
						r.Delete("/tags/{key}", s.promptCtrl.HandleDeleteVersionTag)
					})
				})

				r.Route("/aliases/{alias}", func(r chi.Router) {
					r.Get("/", s.promptCtrl.HandleGetVersionByAlias)
					r.Put("/", s.promptCtrl.HandleSetAlias)
					r.Delete("/", s.promptCtrl.HandleDeleteAlias)
				})

				r.Put("/tags/{key}", s.promptCtrl.HandleSetTag)
				r.Delete("/tags/{key}", s.promptCtrl.HandleDeleteTag)
			})
		})
	}

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte("OK"))
	})

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// PromptController handles prompt registry HTTP requests
type PromptController struct {
	useCases interfaces.PromptUseCases
}

// NewPromptController creates a new prompt registry controller
func NewPromptController(useCases interfaces.PromptUseCases) *PromptController {
	return &PromptController{
		useCases: useCases,
	}
}
