package helpers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type errorResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("Failed to marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondWithError(w http.ResponseWriter, status int, codes []string) {
	RespondWithJSON(w, status, errorResponse{Success: false, Errors: codes})
}
