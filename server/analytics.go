package main

import (
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types for analytics tracking
const (
	EvtPeerJoin       = "peer_join"
	EvtPeerLeave      = "peer_leave"
	EvtRoomOpen       = "room_open"
	EvtRoomClose      = "room_close"
	EvtRoomFull       = "room_limit"
	EvtTicketIssued   = "ticket_issued"
	EvtTicketRejected = "ticket_rejected"
	EvtRateLimited    = "rate_limited"
)

const (
	analyticsBufSize   = 1024
	analyticsBatchSize = 50
	analyticsFlush     = 5 * time.Second
)

// AnalyticsEvent is a single trackable event
type AnalyticsEvent struct {
	Type      string
	Room      string
	PeerID    string
	Data      string
	Timestamp time.Time
}

// Analytics records relay events with batched background writes
type Analytics struct {
	db     *DB
	log    zerolog.Logger
	events chan AnalyticsEvent
	stop   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewAnalytics creates and starts the background writer. db may be nil, in
// which case events are discarded.
func NewAnalytics(db *DB, log zerolog.Logger) *Analytics {
	a := &Analytics{
		db:     db,
		log:    log.With().Str("component", "analytics").Logger(),
		events: make(chan AnalyticsEvent, analyticsBufSize),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event without blocking
func (a *Analytics) Track(evtType, room, peerID, data string) {
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		Room:      room,
		PeerID:    peerID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// full: drop rather than stall the hub
	}
}

// Stop flushes pending events and stops the writer
func (a *Analytics) Stop() {
	a.once.Do(func() {
		close(a.stop)
		a.wg.Wait()
	})
}

func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, analyticsBatchSize)
	ticker := time.NewTicker(analyticsFlush)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= analyticsBatchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					a.flush(batch)
					return
				}
			}
		}
	}
}

func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		a.log.Error().Err(err).Msg("begin tx")
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, room, peer_id, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		a.log.Error().Err(err).Msg("prepare insert")
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		room := sql.NullString{String: evt.Room, Valid: evt.Room != ""}
		peer := sql.NullString{String: evt.PeerID, Valid: evt.PeerID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, room, peer, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			a.log.Warn().Err(err).Str("event", evt.Type).Msg("insert event")
		}
	}
	if err := tx.Commit(); err != nil {
		a.log.Error().Err(err).Int("events", len(events)).Msg("commit events")
	}
}

// EventCounts returns counts of each event type over the last days days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	since := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= ?
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// PeakRooms lists the rooms with the most joins over the last days days
func (a *Analytics) PeakRooms(days, limit int) ([]RoomCount, error) {
	if a.db == nil {
		return nil, nil
	}
	since := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	rows, err := a.db.conn.Query(`
		SELECT room, COUNT(*) AS joins FROM analytics_events
		WHERE event_type = ? AND room IS NOT NULL AND created_at >= ?
		GROUP BY room ORDER BY joins DESC, room LIMIT ?
	`, EvtPeerJoin, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RoomCount
	for rows.Next() {
		var rc RoomCount
		if err := rows.Scan(&rc.Room, &rc.Joins); err != nil {
			continue
		}
		result = append(result, rc)
	}
	return result, rows.Err()
}

// RoomCount holds the number of joins seen by a room
type RoomCount struct {
	Room  string `json:"room"`
	Joins int    `json:"joins"`
}
