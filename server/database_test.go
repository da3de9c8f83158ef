package main

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)

	v, err := db.GetSetting("missing")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, db.SetSetting("k", "one"))
	require.NoError(t, db.SetSetting("k", "two"))
	v, err = db.GetSetting("k")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestMigrateIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, db.SetSetting("k", "kept"))
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.GetSetting("k")
	require.NoError(t, err)
	assert.Equal(t, "kept", v)
}

func TestAnalyticsFlushOnStop(t *testing.T) {
	db := openTestDB(t)
	a := NewAnalytics(db, zerolog.Nop())

	a.Track(EvtPeerJoin, "red", "p1", "json")
	a.Track(EvtPeerJoin, "red", "p2", "msgpack")
	a.Track(EvtPeerJoin, "blue", "p3", "json")
	a.Track(EvtPeerLeave, "red", "p1", "")
	a.Track(EvtTicketRejected, "vip", "", "wrong room password")
	a.Stop()
	a.Stop()

	counts, err := a.EventCounts(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		EvtPeerJoin:       3,
		EvtPeerLeave:      1,
		EvtTicketRejected: 1,
	}, counts)

	top, err := a.PeakRooms(1, 10)
	require.NoError(t, err)
	assert.Equal(t, []RoomCount{{Room: "red", Joins: 2}, {Room: "blue", Joins: 1}}, top)
}

func TestAnalyticsWithoutDB(t *testing.T) {
	a := NewAnalytics(nil, zerolog.Nop())
	a.Track(EvtRoomOpen, "x", "", "")
	a.Stop()

	counts, err := a.EventCounts(7)
	assert.NoError(t, err)
	assert.Nil(t, counts)
}
