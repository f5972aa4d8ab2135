// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ListRoomsHandler serves one page of the room listing as JSON: GET /rooms?page=N.
func ListRoomsHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		page := 0
		if v := r.URL.Query().Get("page"); v != "" {
			p, err := strconv.Atoi(v)
			if err != nil || p < 0 {
				http.Error(w, "invalid page", http.StatusBadRequest)
				return
			}
			page = p
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rs.Service.RoomListMessage(page)); err != nil {
			http.Error(w, "failed to encode rooms", http.StatusInternalServerError)
		}
	}
}
