package main

import (
	"encoding/json"
	"net/http"

	"car-arena/protocol"
)

// Query parameters understood by /ws
const (
	paramRoom   = "room"
	paramTicket = "ticket"
	paramCodec  = "codec"
)

const maxTicketBody = 1 << 12

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, protocol.ErrorResponse{Error: msg})
}
