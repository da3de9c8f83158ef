package main

import (
	"strings"

	"github.com/google/uuid"
)

const (
	defaultRoom    = "lobby"
	maxRoomNameLen = 32
)

// NewPeerID returns a fresh peer identity
func NewPeerID() string {
	return uuid.NewString()
}

// normalizeRoom lowercases and trims a room name. Empty means the lobby.
// Names are limited to letters, digits, '-' and '_'.
func normalizeRoom(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return defaultRoom, true
	}
	if len(name) > maxRoomNameLen {
		return "", false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", false
		}
	}
	return name, true
}
