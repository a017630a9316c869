// Package server wires the repositories, services and handlers into one chi
// router and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/conftrack/internal/auth"
	"github.com/sakif/conftrack/internal/config"
	"github.com/sakif/conftrack/internal/flash"
	"github.com/sakif/conftrack/internal/handler"
	"github.com/sakif/conftrack/internal/markdown"
	"github.com/sakif/conftrack/internal/middleware"
	sqliteRepo "github.com/sakif/conftrack/internal/repository/sqlite"
	"github.com/sakif/conftrack/internal/respond"
	"github.com/sakif/conftrack/internal/service"
	"github.com/sakif/conftrack/internal/validation"
	"github.com/sakif/conftrack/internal/view"
	"github.com/sakif/conftrack/web"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and the database it was built on.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	db     *sqliteRepo.DB
	logger *slog.Logger
}

// New builds the whole dependency graph on top of an open, migrated db.
// The server takes ownership of db and closes it when Start returns.
func New(cfg *config.Config, db *sqliteRepo.DB, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		db:     db,
		logger: logger,
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() error {
	tokens, err := auth.NewTokenService(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	templates, err := view.New(web.Templates())
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	v := validation.New()
	md := markdown.New()
	out := respond.NewWriter(templates, s.logger)

	snippets := service.NewSnippetService(s.db.Snippets(), v, s.logger)
	sessionTypes := service.NewSessionTypeService(s.db.SessionTypes(), v, s.logger)
	events := service.NewEventService(s.db.Events(), v, s.cfg.Events.Current, s.logger)
	authSvc := service.NewAuthService(s.db.Users(), tokens, auth.NewPasswordService(), s.logger)

	var github handler.OAuthProvider
	if gh := s.cfg.Auth.GitHub; gh.Enabled() {
		github = auth.NewGitHubProvider(gh.ClientID, gh.ClientSecret, gh.CallbackURL)
	}

	home := handler.NewHomeHandler(snippets, events, md, out, s.logger)
	login := handler.NewAuthHandler(authSvc, github, tokens.TTL(), s.cfg.Server.CookieSecure, out, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippets, md, out, s.logger)
	sessionTypeHandler := handler.NewSessionTypeHandler(sessionTypes, events, out, s.logger)
	admin := auth.Require(auth.PrivilegeAdmin)

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.URLFormat)
	r.Use(middleware.MethodOverride)
	r.Use(flash.Middleware)
	r.Use(auth.LoadUser(tokens, authSvc, s.logger))

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.Static())))
	r.Get("/healthz", s.health)
	r.NotFound(home.NotFound)

	r.Get("/", home.Home)
	r.Get("/login", login.LoginForm)
	r.Post("/login", login.Login)
	r.Post("/logout", login.Logout)
	r.Get("/auth/github", login.GitHubLogin)
	r.Get("/auth/github/callback", login.GitHubCallback)

	r.With(admin).Get("/manage", home.Manage)
	r.Route("/manage/snippets", func(r chi.Router) {
		r.Use(admin)
		snippetHandler.Routes(r)
	})
	sessionTypeHandler.Routes(r, admin)

	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Start serves until ctx is cancelled, then drains in-flight requests and
// closes the database.
func (s *Server) Start(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("url", s.cfg.Server.BaseURL),
			slog.String("database", s.cfg.Database.Path),
			slog.Bool("github", s.cfg.Auth.GitHub.Enabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
