package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"signalengine/src/executors"
	"signalengine/src/model"
)

type signalSubmitter interface {
	Submit(sig model.Signal) error
}

type submitResponse struct {
	Status string `json:"status"`
	Symbol string `json:"symbol"`
}

// SubmitSignalHandler queues a signal for the next engine cycle.
func SubmitSignalHandler(engine signalSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sig model.Signal
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&sig); err != nil {
			logger.WithError(err).Warn("invalid signal payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if err := engine.Submit(sig); err != nil {
			switch {
			case errors.Is(err, model.ErrValidationRejection):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, executors.ErrQueueFull):
				logger.WithField("symbol", sig.Symbol).Warn("signal queue full")
				http.Error(w, "signal queue full", http.StatusServiceUnavailable)
			default:
				logger.WithError(err).Error("failed to submit signal")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusAccepted, submitResponse{Status: "queued", Symbol: sig.Symbol}, "signal")
	}
}
