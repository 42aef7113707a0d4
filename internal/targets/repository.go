// Package targets assembles the composite "target plus social stats" view:
// backend target records merged with per-platform follower metrics, behind
// a TTL read cache.
package targets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katchaapp/katcha/internal/cache"
	"github.com/katchaapp/katcha/internal/katcha"
	"github.com/katchaapp/katcha/internal/models"
	"github.com/katchaapp/katcha/internal/store"
	"github.com/katchaapp/katcha/pkg/logging"
	"github.com/katchaapp/katcha/pkg/telemetry"
)

// ErrInvalidPlatform is returned for platforms the backend does not track
var ErrInvalidPlatform = errors.New("targets: unsupported platform")

const (
	listCacheKey      = "targets:list"
	statsFetchWorkers = 4
)

// Repository provides CRUD over tracked targets. Reads go through the
// cache; mutations invalidate it.
type Repository struct {
	client *katcha.Client
	cache  cache.Store
	snaps  store.SnapshotStore
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewRepository creates a target repository. cacheStore may be nil to
// disable read caching.
func NewRepository(client *katcha.Client, cacheStore cache.Store, snaps store.SnapshotStore, ttl time.Duration) *Repository {
	return &Repository{
		client: client,
		cache:  cacheStore,
		snaps:  snaps,
		logger: logging.GetLogger().With(zap.String("component", "targets")),
		ttl:    ttl,
		now:    time.Now,
	}
}

type listResponse struct {
	Targets []models.Target `json:"targets"`
}

type addResponse struct {
	Success bool          `json:"success"`
	Target  models.Target `json:"target"`
}

// List returns all tracked targets with their current social stats merged
// in. The assembled list is cached; a cache hit skips the network entirely.
// Per-target stats failures degrade to zeroed metrics for that target only.
func (r *Repository) List(ctx context.Context) ([]models.Target, error) {
	ctx, span := telemetry.StartSpan(ctx, "targets.list")
	defer span.End()

	if cached, ok := r.fromCache(ctx); ok {
		return cached, nil
	}

	resp, err := r.client.Call(ctx, http.MethodGet, "/api/targets", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch targets: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	var list listResponse
	if err := resp.Decode(&list); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsFetchWorkers)
	for i := range list.Targets {
		i := i
		g.Go(func() error {
			r.enrich(gctx, &list.Targets[i])
			return nil
		})
	}
	g.Wait()

	r.toCache(ctx, list.Targets)
	return list.Targets, nil
}

// enrich merges live social stats into a target record. Failures leave the
// target with zeroed metrics and are logged only.
func (r *Repository) enrich(ctx context.Context, t *models.Target) {
	stats, err := r.fetchStats(ctx, t.Platform, t.Username, t.ID)
	if err != nil {
		r.logger.Warn("failed to fetch social stats",
			zap.String("platform", string(t.Platform)),
			zap.String("username", t.Username),
			zap.Error(err))
		return
	}
	t.Followers = stats.Followers
	t.Following = stats.Following
	if stats.ProfilePicURL != "" {
		t.ProfilePicURL = stats.ProfilePicURL
	}
	if stats.FullName != "" {
		t.FullName = stats.FullName
	}
	t.IsVerified = stats.IsVerified
}

// fetchStats fetches userinfo, followers and following in parallel. The
// userinfo counts win; when userinfo carries none, the followers/following
// totals fill in, independently per metric. A failed followers/following
// fetch only disables its fallback; a failed userinfo fetch fails the
// target.
func (r *Repository) fetchStats(ctx context.Context, platform models.Platform, username string, targetID int64) (socialStats, error) {
	var userinfo, followers, following json.RawMessage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := r.social(gctx, platform, username, targetID, "userinfo")
		if err != nil {
			return err
		}
		userinfo = data
		return nil
	})
	g.Go(func() error {
		data, err := r.social(gctx, platform, username, targetID, "followers")
		if err != nil {
			r.logger.Debug("followers fetch failed",
				zap.String("username", username), zap.Error(err))
			return nil
		}
		followers = data
		return nil
	})
	g.Go(func() error {
		data, err := r.social(gctx, platform, username, targetID, "following")
		if err != nil {
			r.logger.Debug("following fetch failed",
				zap.String("username", username), zap.Error(err))
			return nil
		}
		following = data
		return nil
	})
	if err := g.Wait(); err != nil {
		return socialStats{}, err
	}

	stats, err := normalizeStats(platform, userinfo)
	if err != nil {
		return socialStats{}, err
	}
	if stats.Followers == 0 && followers != nil {
		stats.Followers = followTotal(followers)
	}
	if stats.Following == 0 && following != nil {
		stats.Following = followTotal(following)
	}
	return stats, nil
}

func (r *Repository) social(ctx context.Context, platform models.Platform, username string, targetID int64, action string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("platform", string(platform))
	q.Set("username", username)
	q.Set("action", action)
	q.Set("target_id", strconv.FormatInt(targetID, 10))

	resp, err := r.client.Call(ctx, http.MethodGet, "/api/social?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%s response is not JSON", action)
	}
	return resp.Data, nil
}

type addRequest struct {
	Platform models.Platform `json:"platform"`
	Username string          `json:"username"`
}

// Add registers a new target. On success it writes the target's initial
// snapshot (best effort) and invalidates the list cache.
func (r *Repository) Add(ctx context.Context, platform models.Platform, username string) (*models.Target, error) {
	ctx, span := telemetry.StartSpan(ctx, "targets.add")
	defer span.End()

	if !platform.Valid() {
		return nil, ErrInvalidPlatform
	}

	resp, err := r.client.Call(ctx, http.MethodPost, "/api/targets", addRequest{Platform: platform, Username: username})
	if err != nil {
		return nil, fmt.Errorf("failed to add target: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	var added addResponse
	if err := resp.Decode(&added); err != nil {
		return nil, err
	}

	if err := r.snaps.Put(ctx, models.SnapshotOf(added.Target, r.now())); err != nil {
		r.logger.Warn("failed to write initial snapshot",
			zap.Int64("target_id", added.Target.ID),
			zap.Error(err))
	}
	r.invalidate(ctx)

	r.logger.Info("target added",
		zap.Int64("target_id", added.Target.ID),
		zap.String("platform", string(platform)),
		zap.String("username", username))
	return &added.Target, nil
}

type deleteRequest struct {
	TargetID int64 `json:"target_id"`
}

// Delete removes a target on the backend and drops its local snapshot and
// the list cache
func (r *Repository) Delete(ctx context.Context, targetID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "targets.delete")
	defer span.End()

	resp, err := r.client.Call(ctx, http.MethodDelete, "/api/targets", deleteRequest{TargetID: targetID})
	if err != nil {
		return fmt.Errorf("failed to delete target: %w", err)
	}
	if err := resp.Err(); err != nil {
		return err
	}

	if err := r.snaps.Delete(ctx, targetID); err != nil {
		r.logger.Warn("failed to drop snapshot",
			zap.Int64("target_id", targetID),
			zap.Error(err))
	}
	r.invalidate(ctx)

	r.logger.Info("target deleted", zap.Int64("target_id", targetID))
	return nil
}

func (r *Repository) fromCache(ctx context.Context) ([]models.Target, bool) {
	if r.cache == nil || r.ttl <= 0 {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, listCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			r.logger.Warn("cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var targets []models.Target
	if err := json.Unmarshal([]byte(raw), &targets); err != nil {
		r.logger.Warn("cache entry corrupt, ignoring", zap.Error(err))
		return nil, false
	}
	return targets, true
}

func (r *Repository) toCache(ctx context.Context, targets []models.Target) {
	if r.cache == nil || r.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(targets)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, listCacheKey, string(raw), r.ttl); err != nil {
		r.logger.Warn("cache write failed", zap.Error(err))
	}
}

func (r *Repository) invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, listCacheKey); err != nil {
		r.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}
