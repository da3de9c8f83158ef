package protocol

import "time"

// TicketRequest asks the relay for permission to join a protected room
type TicketRequest struct {
	Room     string `json:"room"`
	Password string `json:"password"`
}

// TicketResponse carries a signed room ticket to pass as ?ticket= on /ws
type TicketResponse struct {
	Ticket    string    `json:"ticket"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RoomInfo describes one room in the /rooms listing
type RoomInfo struct {
	Name      string `json:"name"`
	Peers     int    `json:"peers"`
	Protected bool   `json:"protected"`
}

// ErrorResponse is the body of a non-2xx relay reply
type ErrorResponse struct {
	Error string `json:"error"`
}
