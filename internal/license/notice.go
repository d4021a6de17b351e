// Package license decides when a shop should be told its license is about
// to expire, and makes sure each notice is shown at most once per day.
package license

import (
	"context"
	"fmt"
	"time"
)

// Level grades how close the license is to expiring.
type Level string

const (
	LevelExpired  Level = "expired"
	LevelCritical Level = "critical"
	LevelWarning  Level = "warning"
	LevelInfo     Level = "info"
)

// DefaultNoticeDays is how many days before expiry info notices begin.
const DefaultNoticeDays = 7

// keyTTL outlives the calendar day embedded in the key.
const keyTTL = 48 * time.Hour

// Notice is a license-expiry message for one owner.
type Notice struct {
	OwnerID   string    `json:"owner_id"`
	Level     Level     `json:"level"`
	DaysLeft  int       `json:"days_left"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
}

// Store records notice keys. MarkOnce returns true only for the first
// caller that claims key until ttl elapses.
type Store interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Notifier computes notices and de-duplicates them through a Store.
type Notifier struct {
	store      Store
	noticeDays int
}

// NewNotifier returns a Notifier starting notices noticeDays before expiry.
// Values below 3 are raised to 3 so warning and critical notices always fire.
func NewNotifier(store Store, noticeDays int) *Notifier {
	if noticeDays < 3 {
		noticeDays = 3
	}
	return &Notifier{store: store, noticeDays: noticeDays}
}

// DaysLeft counts calendar days from now until expiresAt in now's location.
// It is negative once the expiry date has passed.
func DaysLeft(expiresAt, now time.Time) int {
	exp := expiresAt.In(now.Location())
	ey, em, ed := exp.Date()
	ny, nm, nd := now.Date()
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(n).Hours() / 24)
}

// Classify returns the notice level for daysLeft, or false when no notice
// is due.
func Classify(daysLeft, noticeDays int) (Level, bool) {
	switch {
	case daysLeft < 0:
		return LevelExpired, true
	case daysLeft <= 1:
		return LevelCritical, true
	case daysLeft <= 3:
		return LevelWarning, true
	case daysLeft <= noticeDays:
		return LevelInfo, true
	}
	return "", false
}

// Check returns the notice due for ownerID, or nil when nothing is due or
// the same notice was already delivered today.
func (n *Notifier) Check(ctx context.Context, ownerID string, expiresAt, now time.Time) (*Notice, error) {
	days := DaysLeft(expiresAt, now)
	level, due := Classify(days, n.noticeDays)
	if !due {
		return nil, nil
	}

	first, err := n.store.MarkOnce(ctx, dedupKey(ownerID, level, now), keyTTL)
	if err != nil {
		return nil, fmt.Errorf("mark license notice: %w", err)
	}
	if !first {
		return nil, nil
	}

	return &Notice{
		OwnerID:   ownerID,
		Level:     level,
		DaysLeft:  days,
		ExpiresAt: expiresAt,
		Message:   message(level, days),
	}, nil
}

func dedupKey(ownerID string, level Level, now time.Time) string {
	return fmt.Sprintf("license-notice:%s:%s:%s", ownerID, level, now.Format(time.DateOnly))
}

func message(level Level, days int) string {
	switch level {
	case LevelExpired:
		return "Sua licença expirou. Renove para continuar usando o sistema."
	case LevelCritical:
		if days == 0 {
			return "Sua licença expira hoje."
		}
		return "Sua licença expira amanhã."
	}
	return fmt.Sprintf("Sua licença expira em %d dias.", days)
}
