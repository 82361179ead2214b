package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
	"tgadmin/internal/config"
	"tgadmin/internal/http-server/handlers/admin"
	"tgadmin/internal/http-server/handlers/dashboard"
	"tgadmin/internal/http-server/handlers/errors"
	"tgadmin/internal/http-server/handlers/login"
	"tgadmin/internal/http-server/handlers/maintenance"
	"tgadmin/internal/http-server/handlers/users"
	"tgadmin/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"tgadmin/internal/http-server/middleware/authenticate"
	"tgadmin/internal/http-server/middleware/logger"
	"tgadmin/internal/http-server/middleware/timeout"
	"tgadmin/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	login.Core
	maintenance.Core
	admin.Core
	users.Core
	dashboard.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler) *Server {
	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      NewRouter(conf, log, handler),
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &server
}

// NewRouter builds the API routes. Everything under /api except login
// goes through the auth gate.
func NewRouter(conf *config.Config, log *slog.Logger, handler Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(logger.New(log))
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	gate := authenticate.New(log, handler)

	router.Route("/api", func(rootApi chi.Router) {
		if conf.Listen.RequestTimeout > 0 {
			rootApi.Use(timeout.Timeout(conf.Listen.RequestTimeout))
		}
		rootApi.Get("/login", login.Login(log, handler))

		rootApi.Post("/maintenance", gate.Wrap(maintenance.Update(log, handler)))
		rootApi.Get("/getUpdates", gate.Wrap(maintenance.List(log, handler)))

		rootApi.Get("/admin/{id}/profile", gate.Wrap(admin.Profile(log, handler)))

		rootApi.Route("/users", func(u chi.Router) {
			u.Get("/", gate.Wrap(users.List(log, handler)))
			u.Get("/{id}", gate.Wrap(users.Get(log, handler)))
			u.Put("/{id}", gate.Wrap(users.Update(log, handler)))
			u.Post("/{id}/change_pass", gate.Wrap(admin.ChangePassword(log, handler)))
		})
		rootApi.Get("/latest_users", gate.Wrap(users.Latest(log, handler)))
		rootApi.Get("/dashboard", gate.Wrap(dashboard.Stats(log, handler)))
	})

	if conf.Metrics.Enabled {
		router.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	return router
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIp, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	s.log.Info("starting api server", slog.String("address", serverAddress))

	return s.httpServer.Serve(listener)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down api server")
	return s.httpServer.Shutdown(ctx)
}
