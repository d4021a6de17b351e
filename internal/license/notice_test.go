package license

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		days      int
		wantLevel Level
		wantDue   bool
	}{
		{days: -10, wantLevel: LevelExpired, wantDue: true},
		{days: -1, wantLevel: LevelExpired, wantDue: true},
		{days: 0, wantLevel: LevelCritical, wantDue: true},
		{days: 1, wantLevel: LevelCritical, wantDue: true},
		{days: 2, wantLevel: LevelWarning, wantDue: true},
		{days: 3, wantLevel: LevelWarning, wantDue: true},
		{days: 4, wantLevel: LevelInfo, wantDue: true},
		{days: 7, wantLevel: LevelInfo, wantDue: true},
		{days: 8, wantDue: false},
		{days: 90, wantDue: false},
	}

	for _, tt := range tests {
		level, due := Classify(tt.days, DefaultNoticeDays)
		if due != tt.wantDue || level != tt.wantLevel {
			t.Errorf("Classify(%d) = (%q, %v), want (%q, %v)", tt.days, level, due, tt.wantLevel, tt.wantDue)
		}
	}
}

func TestDaysLeft(t *testing.T) {
	sp := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2026, 5, 4, 23, 30, 0, 0, sp)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      int
	}{
		{name: "later today", expiresAt: time.Date(2026, 5, 4, 23, 59, 0, 0, sp), want: 0},
		{name: "tomorrow morning", expiresAt: time.Date(2026, 5, 5, 0, 10, 0, 0, sp), want: 1},
		{name: "yesterday", expiresAt: time.Date(2026, 5, 3, 12, 0, 0, 0, sp), want: -1},
		{name: "utc instant on same local day", expiresAt: time.Date(2026, 5, 5, 2, 0, 0, 0, time.UTC), want: 0},
		{name: "next month", expiresAt: time.Date(2026, 6, 4, 12, 0, 0, 0, sp), want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysLeft(tt.expiresAt, now); got != tt.want {
				t.Errorf("DaysLeft = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNotifier_CheckDeduplicates(t *testing.T) {
	n := NewNotifier(NewMemoryStore(), DefaultNoticeDays)
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	expires := now.AddDate(0, 0, 2)

	first, err := n.Check(ctx, "owner-1", expires, now)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if first == nil {
		t.Fatal("first Check returned no notice")
	}
	if first.Level != LevelWarning || first.DaysLeft != 2 {
		t.Errorf("notice = %+v, want warning with 2 days left", first)
	}
	if first.Message == "" {
		t.Error("notice has no message")
	}

	again, err := n.Check(ctx, "owner-1", expires, now.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("second Check: %v", err)
	}
	if again != nil {
		t.Errorf("second Check on same day = %+v, want nil", again)
	}

	other, err := n.Check(ctx, "owner-2", expires, now)
	if err != nil || other == nil {
		t.Errorf("other owner Check = %v, %v; want a notice", other, err)
	}

	nextDay, err := n.Check(ctx, "owner-1", expires, now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("next day Check: %v", err)
	}
	if nextDay == nil || nextDay.Level != LevelCritical {
		t.Errorf("next day notice = %+v, want critical", nextDay)
	}
}

func TestNotifier_NoNoticeFarFromExpiry(t *testing.T) {
	n := NewNotifier(NewMemoryStore(), DefaultNoticeDays)
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	got, err := n.Check(context.Background(), "owner-1", now.AddDate(0, 1, 0), now)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got != nil {
		t.Errorf("Check = %+v, want nil", got)
	}
}

func TestNewNotifier_MinimumWindow(t *testing.T) {
	n := NewNotifier(NewMemoryStore(), 0)
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	got, err := n.Check(context.Background(), "o", now.AddDate(0, 0, 3), now)
	if err != nil || got == nil || got.Level != LevelWarning {
		t.Errorf("Check with zero notice days = %+v, %v; want warning", got, err)
	}
}

type failingStore struct{}

func (failingStore) MarkOnce(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func TestNotifier_StoreError(t *testing.T) {
	n := NewNotifier(failingStore{}, DefaultNoticeDays)
	now := time.Now()

	if _, err := n.Check(context.Background(), "o", now, now); err == nil {
		t.Fatal("Check should surface store errors")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	ctx := context.Background()

	if ok, _ := s.MarkOnce(ctx, "k", time.Hour); !ok {
		t.Fatal("first MarkOnce = false")
	}
	if ok, _ := s.MarkOnce(ctx, "k", time.Hour); ok {
		t.Fatal("second MarkOnce = true")
	}

	clock = clock.Add(time.Hour)
	if ok, _ := s.MarkOnce(ctx, "k", time.Hour); !ok {
		t.Error("MarkOnce after ttl = false")
	}
}

func TestMemoryStore_ConcurrentClaims(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		claims int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.MarkOnce(ctx, "same", time.Minute); ok {
				mu.Lock()
				claims++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if claims != 1 {
		t.Errorf("claims = %d, want 1", claims)
	}
}
