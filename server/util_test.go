package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoom(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", defaultRoom, true},
		{"  Garage ", "garage", true},
		{"team_2-b", "team_2-b", true},
		{"two words", "", false},
		{"café", "", false},
		{strings.Repeat("a", maxRoomNameLen), strings.Repeat("a", maxRoomNameLen), true},
		{strings.Repeat("a", maxRoomNameLen+1), "", false},
	}
	for _, tt := range tests {
		got, ok := normalizeRoom(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewPeerIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewPeerID()
		assert.Regexp(t, uuidRegex, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
