package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"coppia/internal/amqp"
	"coppia/internal/core"
	"coppia/internal/equity"
)

type fakeRecomputer struct {
	periods []core.Period
	err     error
}

func (f *fakeRecomputer) Recompute(_ context.Context, period core.Period) (equity.MonthlyStatus, error) {
	if f.err != nil {
		return equity.MonthlyStatus{}, f.err
	}
	f.periods = append(f.periods, period)
	return equity.MonthlyStatus{Period: period}, nil
}

func TestHandleChangeMessage(t *testing.T) {
	rec := &fakeRecomputer{}
	w := NewSnapshotWorker(rec)

	msg := &amqp.LedgerChangedMessage{
		Entity: amqp.EntityExpense,
		ID:     "e1",
		Year:   2026,
		Month:  3,
	}
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleChangeMessage() error = %v", err)
	}
	if len(rec.periods) != 1 || rec.periods[0] != (core.Period{Year: 2026, Month: 3}) {
		t.Errorf("recomputed %+v, want [2026-03]", rec.periods)
	}
}

func TestHandleChangeMessage_InvalidPeriodDropped(t *testing.T) {
	rec := &fakeRecomputer{}
	w := NewSnapshotWorker(rec)

	msg := &amqp.LedgerChangedMessage{Entity: amqp.EntityExpense, ID: "e1", Year: 2026, Month: 13}
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("invalid period should be dropped without error, got %v", err)
	}
	if len(rec.periods) != 0 {
		t.Errorf("recomputed %+v, want none", rec.periods)
	}
}

func TestHandleChangeMessage_RecomputeFailurePropagates(t *testing.T) {
	rec := &fakeRecomputer{err: errors.New("db gone")}
	w := NewSnapshotWorker(rec)

	msg := &amqp.LedgerChangedMessage{Entity: amqp.EntityFinances, ID: "u1", Year: 2026, Month: 3}
	if err := w.HandleChangeMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}

func TestRefreshPreviousPeriod_MonthBoundary(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want core.Period
	}{
		{
			name: "mid year",
			now:  time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
			want: core.Period{Year: 2026, Month: 6},
		},
		{
			name: "january rolls into previous year",
			now:  time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC),
			want: core.Period{Year: 2025, Month: 12},
		},
		{
			name: "day 31 does not skip short months",
			now:  time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			want: core.Period{Year: 2026, Month: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecomputer{}
			w := NewSnapshotWorker(rec)
			w.now = func() time.Time { return tt.now }

			if err := w.RefreshPreviousPeriod(context.Background()); err != nil {
				t.Fatalf("RefreshPreviousPeriod() error = %v", err)
			}
			if len(rec.periods) != 1 || rec.periods[0] != tt.want {
				t.Errorf("recomputed %+v, want [%+v]", rec.periods, tt.want)
			}
		})
	}
}

func TestRefreshCurrentPeriod(t *testing.T) {
	rec := &fakeRecomputer{}
	w := NewSnapshotWorker(rec)
	w.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	if err := w.RefreshCurrentPeriod(context.Background()); err != nil {
		t.Fatalf("RefreshCurrentPeriod() error = %v", err)
	}
	if len(rec.periods) != 1 || rec.periods[0] != (core.Period{Year: 2026, Month: 8}) {
		t.Errorf("recomputed %+v, want [2026-08]", rec.periods)
	}
}
