package api

import (
	"encoding/json"
	"net/http"

	"github.com/MikeSquared-Agency/Topsis/internal/upload"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func failure(message string) upload.Response {
	return upload.Response{Success: false, Message: message}
}
