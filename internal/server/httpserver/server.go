package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/dmitrijs2005/recipekeeper/internal/server/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 1 << 20
)

type AuthService interface {
	Register(ctx context.Context, req services.RegisterRequest) (validation.Result, error)
	Login(ctx context.Context, req services.LoginRequest) (*services.Session, error)
}

type RecipeService interface {
	Create(ctx context.Context, req services.RecipeRequest) (services.Outcome[*services.RecipeDTO], error)
	GetByID(ctx context.Context, id string) (*services.RecipeDTO, error)
	GetAll(ctx context.Context) ([]services.RecipeDTO, error)
	Update(ctx context.Context, id string, req services.RecipeRequest) (services.Outcome[bool], error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ImageService interface {
	PresignUpload(ctx context.Context, req services.ImageUploadRequest) (services.Outcome[*services.ImageUpload], error)
}

// TokenVerifier checks bearer tokens on protected routes.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Services groups the application services the API delegates to.
type Services struct {
	Auth    AuthService
	Recipes RecipeService
	Images  ImageService
}

type Options struct {
	Address        string
	AllowedOrigins []string
	Development    bool
	// Registry receives the HTTP metrics. A fresh registry with runtime
	// collectors is created when nil.
	Registry *prometheus.Registry
}

type Server struct {
	address     string
	development bool
	svc         Services
	tokens      TokenVerifier
	log         logging.Logger
	metrics     *Metrics
	registry    *prometheus.Registry
	router      chi.Router
}

func NewServer(o Options, svc Services, tokens TokenVerifier, l logging.Logger) *Server {
	reg := o.Registry
	if reg == nil {
		reg = newRegistry()
	}

	s := &Server{
		address:     o.Address,
		development: o.Development,
		svc:         svc,
		tokens:      tokens,
		log:         l.With("module", "http_server"),
		metrics:     NewMetrics(reg),
		registry:    reg,
	}
	s.router = s.routes(o.AllowedOrigins)
	return s
}

func (s *Server) routes(origins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.metrics.instrument)
	r.Use(s.recoverer)
	// An empty list disables cross-origin access; cors treats it as "*".
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Location"},
			AllowCredentials: !slices.Contains(origins, "*"),
			MaxAge:           300,
		}))
	}

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Use(s.requireBearer)

			r.Get("/", s.handleListRecipes)
			r.Post("/", s.handleCreateRecipe)
			r.Post("/images", s.handlePresignImage)
			r.Get("/{id}", s.handleGetRecipe)
			r.Put("/{id}", s.handleUpdateRecipe)
			r.Delete("/{id}", s.handleDeleteRecipe)
		})
	})

	return r
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.log.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error(ctx, "HTTP server shutdown failed", "error", err.Error())
		}
	}()

	s.log.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}
