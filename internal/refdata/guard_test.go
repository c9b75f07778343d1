package refdata

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeTimestampStore struct {
	ts      *time.Time
	readErr error
	writes  int
}

func (f *fakeTimestampStore) ReadTimestamp(ctx context.Context) (*time.Time, error) {
	return f.ts, f.readErr
}

func (f *fakeTimestampStore) WriteTimestamp(ctx context.Context, ts time.Time) error {
	f.ts = &ts
	f.writes++
	return nil
}

var guardNow = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func TestEnsureFresh_TodaySkips(t *testing.T) {
	morning := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	store := &fakeTimestampStore{ts: &morning}
	guard := NewGuard(store, func() time.Time { return guardNow })

	refreshes := 0
	status, err := guard.EnsureFresh(context.Background(), func(context.Context) error {
		refreshes++
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != GuardSkipped {
		t.Errorf("status = %s, want SKIPPED", status)
	}
	if refreshes != 0 {
		t.Errorf("refresh ran %d times, want 0", refreshes)
	}
}

func TestEnsureFresh_YesterdayRefreshesOnce(t *testing.T) {
	yesterday := guardNow.AddDate(0, 0, -1)
	store := &fakeTimestampStore{ts: &yesterday}
	guard := NewGuard(store, func() time.Time { return guardNow })

	refreshes := 0
	status, err := guard.EnsureFresh(context.Background(), func(ctx context.Context) error {
		refreshes++
		return store.WriteTimestamp(ctx, guardNow)
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != GuardRefreshed {
		t.Errorf("status = %s, want REFRESHED", status)
	}
	if refreshes != 1 {
		t.Errorf("refresh ran %d times, want 1", refreshes)
	}
	if store.ts == nil || !store.ts.Equal(guardNow) {
		t.Errorf("timestamp not written, got %v", store.ts)
	}
}

func TestEnsureFresh_NilTimestampRefreshes(t *testing.T) {
	store := &fakeTimestampStore{}
	guard := NewGuard(store, func() time.Time { return guardNow })

	status, err := guard.EnsureFresh(context.Background(), func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != GuardRefreshed {
		t.Errorf("status = %s, want REFRESHED", status)
	}
}

func TestEnsureFresh_ReadErrorLeavesTimestampAlone(t *testing.T) {
	yesterday := guardNow.AddDate(0, 0, -1)
	store := &fakeTimestampStore{ts: &yesterday, readErr: errors.New("refresh-state: HTTP 503")}
	guard := NewGuard(store, func() time.Time { return guardNow })

	refreshes := 0
	status, err := guard.EnsureFresh(context.Background(), func(context.Context) error {
		refreshes++
		return nil
	})

	if status != GuardError {
		t.Errorf("status = %s, want ERROR", status)
	}
	if err == nil {
		t.Error("expected error")
	}
	if refreshes != 0 {
		t.Error("refresh must not run after a read fault")
	}
	if !store.ts.Equal(yesterday) {
		t.Error("stored timestamp must be untouched")
	}
}

func TestEnsureFresh_RefreshFaultIsError(t *testing.T) {
	store := &fakeTimestampStore{}
	guard := NewGuard(store, func() time.Time { return guardNow })

	status, err := guard.EnsureFresh(context.Background(), func(context.Context) error {
		return errors.New("reference refresh: HTTP 500")
	})

	if status != GuardError || err == nil {
		t.Errorf("status = %s err = %v, want ERROR with error", status, err)
	}
}

func TestEnsureFresh_SameDayAcrossZones(t *testing.T) {
	// Stored in UTC, caller clock in a fixed +09:00 zone; comparison happens
	// in the caller's zone.
	seoul := time.FixedZone("KST", 9*3600)
	nowLocal := time.Date(2025, 3, 10, 8, 0, 0, 0, seoul)
	// 2025-03-09 23:30 UTC is already 2025-03-10 in KST.
	stored := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)

	store := &fakeTimestampStore{ts: &stored}
	guard := NewGuard(store, func() time.Time { return nowLocal })

	status, err := guard.EnsureFresh(context.Background(), func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != GuardSkipped {
		t.Errorf("status = %s, want SKIPPED", status)
	}
}
