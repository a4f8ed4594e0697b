package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	logger "github.com/sirupsen/logrus"

	"signalengine/src/model"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

type portfolioReader interface {
	Summary() model.PortfolioSummary
	ActivePositions() []model.Position
	ClosedPositions() []model.Position
	History(limit int) []model.ExecutionRecord
}

func writeJSON(w http.ResponseWriter, status int, v any, what string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Errorf("failed to encode %s response", what)
	}
}

// PortfolioHandler returns the portfolio summary with per-position snapshots.
func PortfolioHandler(engine portfolioReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Summary(), "portfolio")
	}
}

// PositionsHandler lists open positions. ?status=closed lists closed ones.
func PositionsHandler(engine portfolioReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("status") {
		case "", "open":
			writeJSON(w, http.StatusOK, engine.ActivePositions(), "positions")
		case "closed":
			writeJSON(w, http.StatusOK, engine.ClosedPositions(), "positions")
		default:
			http.Error(w, "invalid status", http.StatusBadRequest)
		}
	}
}

// HistoryHandler returns the most recent execution records, oldest first.
func HistoryHandler(engine portfolioReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = min(parsed, maxHistoryLimit)
		}
		writeJSON(w, http.StatusOK, engine.History(limit), "history")
	}
}
