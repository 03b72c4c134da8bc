package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/pdfsplit/internal/models"
	"github.com/Lllllllleong/pdfsplit/internal/splitter"
)

// PlanHandler answers plan requests without touching any document: the
// caller supplies the page count.
func PlanHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		var req models.PlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("Could not decode request body", "error", err)
			writePlanResponse(w, logger, http.StatusBadRequest, models.PlanResponse{Status: "error", Error: "could not parse JSON"})
			return
		}

		plan, err := splitter.Plan(req.PageCount, req.PagesPerSegment)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, splitter.ErrInvalidInput) {
				status = http.StatusBadRequest
			}
			writePlanResponse(w, logger, status, models.PlanResponse{Status: "error", Error: err.Error()})
			return
		}
		writePlanResponse(w, logger, http.StatusOK, models.PlanResponse{Status: "ok", Plan: &plan})
	}
}

func writePlanResponse(w http.ResponseWriter, logger *slog.Logger, status int, res models.PlanResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}
