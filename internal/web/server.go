// Package web provides the HTTP API for the front-desk visitor service.
package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/evcraddock/front-desk/internal/auth"
	"github.com/evcraddock/front-desk/internal/logging"
	"github.com/evcraddock/front-desk/internal/notify"
	"github.com/evcraddock/front-desk/internal/visitor"
)

// Server is the front-desk HTTP API server.
type Server struct {
	visitors *visitor.Service
	apiKeys  *auth.APIKeyStore
	config   auth.Config
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer creates a server backed by the given database. Overstay
// alerts are mailed according to cfg. Extra options are passed to the
// visitor service.
func NewServer(db *sql.DB, cfg auth.Config, opts ...visitor.Option) *Server {
	mailer := notify.NewMailer(notify.Config{
		SMTP: notify.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		},
		SendGrid: notify.SendGridConfig{
			APIKey:   cfg.SendGridKey,
			From:     cfg.SMTPFrom,
			FromName: cfg.MailFromName,
		},
		To:      cfg.AlertEmail,
		DevMode: cfg.DevMode,
		BaseURL: cfg.BaseURL,
	}, slog.Default())

	svcOpts := append([]visitor.Option{visitor.WithNotifier(mailer)}, opts...)

	s := &Server{
		visitors: visitor.NewService(visitor.NewRepository(db), svcOpts...),
		apiKeys:  auth.NewAPIKeyStore(db),
		config:   cfg,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/visitors", s.handleAPIVisitors)
	s.mux.HandleFunc("/api/visitors/", s.handleAPIVisitors)

	s.handler = logging.RequestLogger(auth.RequireAPIKey(s.apiKeys, s.mux))

	return s
}

// Visitors returns the visitor service behind the API.
func (s *Server) Visitors() *visitor.Service {
	return s.visitors
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "dev_mode", s.config.DevMode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
