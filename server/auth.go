package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	ticketExpiry      = 10 * time.Minute
	bcryptCost        = 12
	ticketRateWindow  = 60 * time.Second
	maxTicketAttempts = 10
	secretSettingKey  = "ticket_secret"
)

var (
	ErrWrongPassword  = errors.New("wrong room password")
	ErrNotProtected   = errors.New("room is not protected")
	ErrTooManyTries   = errors.New("too many attempts, try again later")
	ErrTicketRequired = errors.New("room requires a ticket")
	ErrTicketRoom     = errors.New("ticket is for another room")
)

// Auth guards password-protected rooms. A correct password buys a short
// lived ticket, which the websocket upgrade checks.
type Auth struct {
	secret []byte
	rooms  map[string]string // room -> bcrypt hash
	now    func() time.Time

	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

type ticketClaims struct {
	Room string `json:"room"`
	jwt.RegisteredClaims
}

// NewAuth creates an Auth for the given protected rooms. Room names are
// matched case-insensitively.
func NewAuth(db *DB, rooms map[string]string, log zerolog.Logger) (*Auth, error) {
	secret, err := loadOrCreateSecret(db, log)
	if err != nil {
		return nil, err
	}
	protected := make(map[string]string, len(rooms))
	for name, hash := range rooms {
		protected[strings.ToLower(name)] = hash
	}
	return &Auth{
		secret:  secret,
		rooms:   protected,
		now:     time.Now,
		rateMap: make(map[string]*rateEntry),
	}, nil
}

// loadOrCreateSecret loads the signing secret from the database, or
// generates and persists a new one, so tickets survive restarts.
func loadOrCreateSecret(db *DB, log zerolog.Logger) ([]byte, error) {
	if db != nil {
		h, err := db.GetSetting(secretSettingKey)
		if err != nil {
			return nil, fmt.Errorf("load ticket secret: %w", err)
		}
		if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
			return b, nil
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate ticket secret: %w", err)
	}
	if db != nil {
		if err := db.SetSetting(secretSettingKey, hex.EncodeToString(secret)); err != nil {
			log.Warn().Err(err).Msg("could not persist ticket secret")
		}
	}
	return secret, nil
}

// HashPassword produces a bcrypt hash suitable for relay.rooms
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Protected reports whether room needs a ticket
func (a *Auth) Protected(room string) bool {
	_, ok := a.rooms[room]
	return ok
}

// IssueTicket checks password for room and signs a ticket
func (a *Auth) IssueTicket(room, password, ip string) (string, time.Time, error) {
	if !a.checkRate(ip) {
		return "", time.Time{}, ErrTooManyTries
	}
	hash, ok := a.rooms[room]
	if !ok {
		return "", time.Time{}, ErrNotProtected
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", time.Time{}, ErrWrongPassword
	}

	now := a.now()
	exp := now.Add(ticketExpiry)
	claims := ticketClaims{
		Room: room,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign ticket: %w", err)
	}
	return token, exp, nil
}

// Admit decides whether a connection may enter room with ticket
func (a *Auth) Admit(room, ticket string) error {
	if !a.Protected(room) {
		return nil
	}
	if ticket == "" {
		return ErrTicketRequired
	}
	claims := &ticketClaims{}
	_, err := jwt.ParseWithClaims(ticket, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return fmt.Errorf("invalid ticket: %w", err)
	}
	if claims.Room != room {
		return ErrTicketRoom
	}
	return nil
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := a.now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(ticketRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxTicketAttempts
}
