package handlers

import (
	"encoding/json"
	"net/http"
)

func ApiInfoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	response := map[string]interface{}{
		"message": "sgsg API v1",
		"endpoints": map[string]string{
			"folders": "/api/v1/folders",
			"memos":   "/api/v1/memos",
			"users":   "/api/v1/users",
		},
	}
	json.NewEncoder(w).Encode(response)
}
