// Package term is the terminal front end: it draws snapshots with tcell,
// turns terminal key and mouse events into raw input, and plays sound cues.
package term

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"car-arena/input"
)

// DefaultKeyHold is how long a key counts as held after its last event.
// Terminals report presses and autorepeats but never releases.
const DefaultKeyHold = 400 * time.Millisecond

// TranslateKey maps a tcell key event to an input key name
func TranslateKey(ev *tcell.EventKey) (input.Key, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return input.KeyArrowUp, true
	case tcell.KeyDown:
		return input.KeyArrowDown, true
	case tcell.KeyLeft:
		return input.KeyArrowLeft, true
	case tcell.KeyRight:
		return input.KeyArrowRight, true
	case tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			return input.KeySpace, true
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		return input.Key(string(r)), true
	}
	return "", false
}

// KeyLatch synthesizes key releases. Each press or repeat refreshes the
// key; Expire releases keys that have been quiet for longer than the hold.
type KeyLatch struct {
	kb   *input.Keyboard
	hold time.Duration
	seen map[input.Key]time.Time
}

// NewKeyLatch wraps kb. A non-positive hold uses DefaultKeyHold.
func NewKeyLatch(kb *input.Keyboard, hold time.Duration) *KeyLatch {
	if hold <= 0 {
		hold = DefaultKeyHold
	}
	return &KeyLatch{kb: kb, hold: hold, seen: make(map[input.Key]time.Time)}
}

// Press holds k as of now
func (l *KeyLatch) Press(k input.Key, now time.Time) {
	l.kb.Press(k)
	l.seen[k] = now
}

// Expire releases every key not refreshed within the hold window
func (l *KeyLatch) Expire(now time.Time) {
	for k, at := range l.seen {
		if now.Sub(at) > l.hold {
			l.kb.Release(k)
			delete(l.seen, k)
		}
	}
}

// Held reports the number of latched keys
func (l *KeyLatch) Held() int {
	return len(l.seen)
}

// Reset forgets every latched key and releases it
func (l *KeyLatch) Reset() {
	for k := range l.seen {
		l.kb.Release(k)
	}
	clear(l.seen)
}
