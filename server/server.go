package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"

	"car-arena/protocol"
)

const qrSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures HTTP routes. publicURL is the externally reachable
// base used in QR codes.
func SetupRoutes(hub *Hub, publicURL string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		room, ok := normalizeRoom(q.Get(paramRoom))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid room name")
			return
		}
		codec, err := protocol.CodecFor(q.Get(paramCodec))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := hub.auth.Admit(room, q.Get(paramTicket)); err != nil {
			hub.analytics.Track(EvtTicketRejected, room, "", err.Error())
			writeError(w, http.StatusForbidden, err.Error())
			return
		}

		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn().Err(err).Msg("upgrade error")
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip, room, codec)
		if !hub.submit(hubCmd{kind: cmdRegister, client: client}) {
			hub.TrackDisconnect(ip)
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("POST /ticket", func(w http.ResponseWriter, r *http.Request) {
		var req protocol.TicketRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTicketBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		room, ok := normalizeRoom(req.Room)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid room name")
			return
		}

		ticket, exp, err := hub.auth.IssueTicket(room, req.Password, extractIP(r))
		switch {
		case errors.Is(err, ErrTooManyTries):
			hub.analytics.Track(EvtTicketRejected, room, "", err.Error())
			writeError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, ErrNotProtected):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrWrongPassword):
			hub.analytics.Track(EvtTicketRejected, room, "", err.Error())
			writeError(w, http.StatusForbidden, err.Error())
		case err != nil:
			hub.log.Error().Err(err).Msg("issue ticket")
			writeError(w, http.StatusInternalServerError, "internal error")
		default:
			hub.analytics.Track(EvtTicketIssued, room, "", "")
			writeJSON(w, http.StatusOK, protocol.TicketResponse{Ticket: ticket, ExpiresAt: exp})
		}
	})

	mux.HandleFunc("GET /qr", func(w http.ResponseWriter, r *http.Request) {
		room, ok := normalizeRoom(r.URL.Query().Get(paramRoom))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid room name")
			return
		}
		target, err := url.Parse(publicURL)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "bad public url")
			return
		}
		q := target.Query()
		q.Set(paramRoom, room)
		target.RawQuery = q.Encode()

		png, err := qrcode.Encode(target.String(), qrcode.Medium, qrSize)
		if err != nil {
			hub.log.Error().Err(err).Msg("encode qr")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	})

	mux.HandleFunc("GET /rooms", func(w http.ResponseWriter, r *http.Request) {
		rooms := hub.Rooms(r.Context())
		if rooms == nil {
			rooms = []protocol.RoomInfo{}
		}
		writeJSON(w, http.StatusOK, rooms)
	})

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		counts, err := hub.analytics.EventCounts(7)
		if err != nil {
			hub.log.Error().Err(err).Msg("event counts")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		top, err := hub.analytics.PeakRooms(7, 10)
		if err != nil {
			hub.log.Error().Err(err).Msg("peak rooms")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		totals, err := hub.metrics.Totals(r.Context())
		if err != nil {
			hub.log.Error().Err(err).Msg("metric totals")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"connections": hub.TotalConns(),
			"events":      counts,
			"topRooms":    top,
			"metrics":     totals,
		})
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}
