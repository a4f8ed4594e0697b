package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"signalengine/src/handler"
	"signalengine/src/model"
	"signalengine/src/websocket"
)

// Engine is everything the HTTP surface reads from or submits to.
type Engine interface {
	Summary() model.PortfolioSummary
	ActivePositions() []model.Position
	ClosedPositions() []model.Position
	History(limit int) []model.ExecutionRecord
	Submit(sig model.Signal) error
}

type Deps struct {
	Engine   Engine
	Hub      *websocket.Hub
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	if deps.Hub != nil {
		r.Get("/ws", websocket.Handler(deps.Hub, nil))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/portfolio", handler.PortfolioHandler(deps.Engine))
		r.Get("/positions", handler.PositionsHandler(deps.Engine))
		r.Get("/history", handler.HistoryHandler(deps.Engine))
		r.Post("/signals", handler.SubmitSignalHandler(deps.Engine))
	})
	return r
}

// StartServer serves h on port until ctx is canceled, then shuts down
// gracefully.
func StartServer(ctx context.Context, port string, h http.Handler) error {
	// Server setup
	addr := ":" + port
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server crashed")
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), GetConfig().ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
		return err
	}
	return nil
}
