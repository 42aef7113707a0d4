// Package detector runs the background poll cycle: fetch current targets,
// diff them against the stored snapshots, persist notifications for what
// moved, and overwrite the snapshot baseline.
package detector

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/katchaapp/katcha/internal/katcha"
	"github.com/katchaapp/katcha/internal/models"
	"github.com/katchaapp/katcha/internal/push"
	"github.com/katchaapp/katcha/internal/store"
	"github.com/katchaapp/katcha/internal/targets"
	"github.com/katchaapp/katcha/pkg/logging"
	"github.com/katchaapp/katcha/pkg/telemetry"
)

// Detector manages change detection over tracked targets
type Detector struct {
	client   *katcha.Client
	targets  *targets.Repository
	snaps    store.SnapshotStore
	notifs   store.NotificationStore
	state    store.StateStore
	notifier push.Notifier
	logger   *zap.Logger
	now      func() time.Time

	running sync.Mutex // held for the duration of one cycle
}

// New creates a change detector
func New(client *katcha.Client, repo *targets.Repository, snaps store.SnapshotStore, notifs store.NotificationStore, state store.StateStore, notifier push.Notifier) *Detector {
	return &Detector{
		client:   client,
		targets:  repo,
		snaps:    snaps,
		notifs:   notifs,
		state:    state,
		notifier: notifier,
		logger:   logging.GetLogger().With(zap.String("component", "detector")),
		now:      time.Now,
	}
}

// Run triggers a poll cycle every interval until the context is cancelled.
// An immediate first cycle runs on startup.
func (d *Detector) Run(ctx context.Context, interval time.Duration) error {
	d.logger.Info("Starting change detector", zap.Duration("interval", interval))

	for {
		if err := d.RunCycle(ctx); err != nil {
			d.logger.Error("Poll cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			d.wait(ctx, interval)
		}
	}
}

// RunCycle executes one poll cycle. Overlapping triggers coalesce: a cycle
// that arrives while another is in progress returns immediately. Any panic
// inside the cycle is recovered and reported as an error.
func (d *Detector) RunCycle(ctx context.Context) (err error) {
	if !d.running.TryLock() {
		d.logger.Debug("Poll cycle already in progress, skipping")
		return nil
	}
	defer d.running.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poll cycle panicked: %v", r)
		}
	}()

	ctx, span := telemetry.StartSpan(ctx, "detector.cycle")
	defer span.End()

	start := d.now()

	if err := d.client.EnsureSession(ctx); err != nil {
		return fmt.Errorf("no usable session: %w", err)
	}

	snapshots, err := d.snaps.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}
	baseline := make(map[int64]models.Snapshot, len(snapshots))
	for _, s := range snapshots {
		baseline[s.TargetID] = s
	}

	current, err := d.targets.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch targets: %w", err)
	}
	if len(current) == 0 {
		d.logger.Info("No targets to check")
		return nil
	}

	changes := 0
	for _, t := range current {
		prev, ok := baseline[t.ID]
		if !ok {
			// first sighting, baseline only
			continue
		}
		change, moved := models.Diff(prev, t)
		if !moved {
			continue
		}
		changes++
		d.record(ctx, change)
	}

	next := make([]models.Snapshot, 0, len(current))
	for _, t := range current {
		next = append(next, models.SnapshotOf(t, start))
	}
	if err := d.snaps.ReplaceAll(ctx, next); err != nil {
		return fmt.Errorf("failed to overwrite snapshots: %w", err)
	}

	if err := d.state.Set(ctx, models.StateKeyLastChecked, start.UTC().Format(time.RFC3339)); err != nil {
		d.logger.Warn("failed to record last check", zap.Error(err))
	}

	d.logger.Info("Poll cycle finished",
		zap.Int("targets", len(current)),
		zap.Int("changes", changes),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// record persists a notification for the change and attempts push delivery.
// Push failure is logged, never propagated.
func (d *Detector) record(ctx context.Context, change models.Change) {
	n := models.NotificationFromChange(change, d.now())
	if err := d.notifs.Append(ctx, n); err != nil {
		d.logger.Error("Failed to persist notification",
			zap.Int64("target_id", change.TargetID),
			zap.Error(err))
		return
	}

	d.logger.Info("Change detected",
		zap.Int64("target_id", change.TargetID),
		zap.String("username", change.Username),
		zap.Int64("followers_diff", change.FollowersDiff),
		zap.Int64("following_diff", change.FollowingDiff))

	if d.notifier == nil {
		return
	}
	meta := map[string]string{
		"target_id": strconv.FormatInt(change.TargetID, 10),
		"platform":  string(change.Platform),
	}
	if err := d.notifier.Send(ctx, change.Title(), change.Summary(), meta); err != nil {
		d.logger.Warn("Push delivery failed",
			zap.Int64("target_id", change.TargetID),
			zap.Error(err))
	}
}

// LastChecked returns the recorded end-of-cycle timestamp, zero when no
// cycle has completed yet
func (d *Detector) LastChecked(ctx context.Context) (time.Time, error) {
	raw, err := d.state.Get(ctx, models.StateKeyLastChecked)
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored last check is malformed: %w", err)
	}
	return ts, nil
}

// wait waits for the interval or until the context is cancelled
func (d *Detector) wait(ctx context.Context, interval time.Duration) {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
