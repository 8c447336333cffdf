package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coppia/internal/amqp"
	"coppia/internal/core"
	"coppia/internal/equity"
)

// Recomputer rebuilds and caches the monthly snapshot for a period.
type Recomputer interface {
	Recompute(ctx context.Context, period core.Period) (equity.MonthlyStatus, error)
}

// SnapshotWorker keeps monthly snapshots warm. It recomputes a period
// whenever a ledger change message arrives and on a monthly schedule, so
// the dashboard never pays the aggregation cost on the request path.
type SnapshotWorker struct {
	status Recomputer
	now    func() time.Time
}

func NewSnapshotWorker(status Recomputer) *SnapshotWorker {
	return &SnapshotWorker{
		status: status,
		now:    time.Now,
	}
}

// HandleChangeMessage processes a single ledger change message from AMQP.
func (w *SnapshotWorker) HandleChangeMessage(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	slog.InfoContext(ctx, "Processing ledger change message",
		"entity", msg.Entity,
		"id", msg.ID,
		"year", msg.Year,
		"month", msg.Month)

	period := msg.Period()
	if err := period.Validate(); err != nil {
		// A malformed period never becomes valid on redelivery.
		slog.WarnContext(ctx, "Dropping change message with invalid period",
			"year", msg.Year,
			"month", msg.Month)
		return nil
	}

	status, err := w.status.Recompute(ctx, period)
	if err != nil {
		return fmt.Errorf("recompute snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot refreshed",
		"year", period.Year,
		"month", period.Month,
		"settlement", status.Summary)

	return nil
}

// RefreshCurrentPeriod recomputes the running month's snapshot. The cron
// scheduler calls this at the start of each month, and worker startup calls
// it once to recover from messages missed while the worker was down.
func (w *SnapshotWorker) RefreshCurrentPeriod(ctx context.Context) error {
	period := core.PeriodOf(w.now())

	if _, err := w.status.Recompute(ctx, period); err != nil {
		return fmt.Errorf("refresh current period: %w", err)
	}

	slog.InfoContext(ctx, "Current period snapshot refreshed",
		"year", period.Year,
		"month", period.Month)

	return nil
}

// RefreshPreviousPeriod recomputes the month that just closed. Run together
// with RefreshCurrentPeriod on the monthly schedule so late entries recorded
// near the month boundary land in the right snapshot.
func (w *SnapshotWorker) RefreshPreviousPeriod(ctx context.Context) error {
	previous := core.PeriodOf(w.now())
	previous.Month--
	if previous.Month == 0 {
		previous.Year--
		previous.Month = 12
	}

	if _, err := w.status.Recompute(ctx, previous); err != nil {
		return fmt.Errorf("refresh previous period: %w", err)
	}

	slog.InfoContext(ctx, "Previous period snapshot refreshed",
		"year", previous.Year,
		"month", previous.Month)

	return nil
}
