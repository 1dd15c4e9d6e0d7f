package middleware

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// writeMessage отвечает ошибкой в общем формате API: {"message": "..."}.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(sharedModels.ErrorResponse{Message: msg})
}

func requestID(r *http.Request) string {
	return chimw.GetReqID(r.Context())
}
