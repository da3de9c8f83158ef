package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"car-arena/protocol"
)

const ticketTimeout = 10 * time.Second

// relayBase turns the websocket URL into the relay's HTTP base URL
func relayBase(wsURL string) (*url.URL, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("parse relay url: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/ws")
	u.RawQuery = ""
	return u, nil
}

// dialURL adds the room, codec and optional ticket to the websocket URL
func dialURL(wsURL, room, codec, ticket string) (string, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}
	q := u.Query()
	q.Set("room", room)
	q.Set("codec", codec)
	if ticket != "" {
		q.Set("ticket", ticket)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetchTicket exchanges a room password for a signed join ticket
func fetchTicket(ctx context.Context, hc *http.Client, wsURL, room, password string) (string, error) {
	base, err := relayBase(wsURL)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(protocol.TicketRequest{Room: room, Password: password})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, ticketTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base.JoinPath("ticket").String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("request ticket: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e protocol.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return "", fmt.Errorf("ticket refused: %s", e.Error)
		}
		return "", fmt.Errorf("ticket refused: %s", resp.Status)
	}

	var tr protocol.TicketResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode ticket: %w", err)
	}
	return tr.Ticket, nil
}
