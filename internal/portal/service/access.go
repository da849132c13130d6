package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/internal/portal/telemetry"
	"github.com/aussiebroadwan/fieldops/pkg/rbac"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

const (
	DefaultPermissionCacheSize = 4096
	DefaultPermissionCacheTTL  = 15 * time.Minute
)

// AccessService is the access guard. A session's permission set is resolved
// once and served from cache until Refresh or the cache TTL, so role edits
// made elsewhere are only seen after that window.
type AccessService struct {
	Store   store.Store
	Metrics *telemetry.Metrics

	cache *lru.LRU[string, rbac.Set]
	group singleflight.Group

	// epoch is bumped by every Refresh. A load only fills the cache when no
	// refresh happened while it ran.
	mu    sync.Mutex
	epoch uint64
}

func NewAccessService(st store.Store, size int, ttl time.Duration, metrics *telemetry.Metrics) *AccessService {
	if size <= 0 {
		size = DefaultPermissionCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultPermissionCacheTTL
	}
	return &AccessService{
		Store:   st,
		Metrics: metrics,
		cache:   lru.NewLRU[string, rbac.Set](size, nil, ttl),
	}
}

// LoadPermissionSet walks the profile's role to its permissions. A profile
// without a role, or whose role has been deleted, gets the empty set.
func (s *AccessService) LoadPermissionSet(ctx context.Context, profile domain.Profile) (rbac.Set, error) {
	log := slogx.FromContext(ctx)

	if !profile.HasRole() {
		return rbac.NewSet(), nil
	}

	perms, err := s.Store.Permissions().ListRolePermissions(ctx, *profile.RoleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return rbac.NewSet(), nil
		}
		log.Error("failed to load role permissions",
			slog.String("role_id", *profile.RoleID),
			slog.Any("error", err),
		)
		return rbac.Set{}, err
	}

	out := make([]rbac.Permission, 0, len(perms))
	for _, p := range perms {
		out = append(out, rbac.New(p.Resource, rbac.Action(p.Action)))
	}
	return rbac.NewSet(out...), nil
}

// ForSession returns the cached permission set for the session, loading it
// on first use.
func (s *AccessService) ForSession(ctx context.Context, sessionID string, profile domain.Profile) (rbac.Set, error) {
	if set, ok := s.cache.Get(sessionID); ok {
		s.Metrics.ObservePermissionCache(true)
		return set, nil
	}
	s.Metrics.ObservePermissionCache(false)

	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	// Concurrent first requests of one session share one load. The load is
	// detached from the caller so one cancelled request does not fail the
	// others waiting on it.
	loadCtx := context.WithoutCancel(ctx)
	key := sessionID + "#" + strconv.FormatUint(epoch, 10)
	v, err, _ := s.group.Do(key, func() (any, error) {
		set, err := s.LoadPermissionSet(loadCtx, profile)
		if err != nil {
			return rbac.Set{}, err
		}

		s.mu.Lock()
		if s.epoch == epoch {
			s.cache.Add(sessionID, set)
		}
		s.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return rbac.Set{}, err
	}
	return v.(rbac.Set), nil
}

// Refresh drops the cached set so the next check reloads it. Loads already
// in flight still answer their callers but are not cached.
func (s *AccessService) Refresh(sessionID string) {
	s.mu.Lock()
	s.epoch++
	s.cache.Remove(sessionID)
	s.mu.Unlock()
}

// Can answers a single permission check for the session.
func (s *AccessService) Can(ctx context.Context, sessionID string, profile domain.Profile, perm rbac.Permission) (bool, error) {
	set, err := s.ForSession(ctx, sessionID, profile)
	if err != nil {
		return false, err
	}
	allowed := set.Has(perm)
	s.Metrics.ObserveAccessCheck(allowed)
	return allowed, nil
}

// CanAny is Can for a list, true when any permission is held.
func (s *AccessService) CanAny(ctx context.Context, sessionID string, profile domain.Profile, perms ...rbac.Permission) (bool, error) {
	set, err := s.ForSession(ctx, sessionID, profile)
	if err != nil {
		return false, err
	}
	allowed := set.HasAny(perms...)
	s.Metrics.ObserveAccessCheck(allowed)
	return allowed, nil
}
