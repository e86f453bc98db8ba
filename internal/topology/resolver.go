package topology

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
	"github.com/yourbreathtaking/backend-safeindustech/internal/repository"
)

// Resolver maps a datastream to the zone it physically belongs to. Lookups
// are served from an in-memory cache so the hot ingest path does not hit
// Postgres per message; a cold miss falls through to a direct query.
type Resolver struct {
	repo repository.ITopologyRepository

	mu    sync.RWMutex
	cache map[uuid.UUID]models.Zone
}

func NewResolver(repo repository.ITopologyRepository) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: make(map[uuid.UUID]models.Zone),
	}
}

// Refresh reloads the whole datastream -> zone mapping and swaps it in.
// The new map is built off-lock; only the pointer swap is guarded.
func (r *Resolver) Refresh(ctx context.Context) error {
	mapping, err := r.repo.LoadDatastreamZones(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cache = mapping
	r.mu.Unlock()

	slog.Info("Topology cache reloaded", "datastreams", len(mapping))
	return nil
}

// Resolve returns the zone for a datastream. A miss is a recoverable
// condition (models.ErrUnresolvedZone), not a fatal one: readings for
// unmapped datastreams are still persisted upstream.
func (r *Resolver) Resolve(ctx context.Context, datastreamID uuid.UUID) (*models.Zone, error) {
	r.mu.RLock()
	zone, ok := r.cache[datastreamID]
	r.mu.RUnlock()
	if ok {
		return &zone, nil
	}

	// Cold miss: a datastream provisioned after the last refresh. Ask the
	// store directly and cache the answer.
	fresh, err := r.repo.GetZoneByDatastream(ctx, datastreamID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[datastreamID] = *fresh
	r.mu.Unlock()
	return fresh, nil
}

// Zones returns the currently cached zones keyed by zone ID.
func (r *Resolver) Zones() map[uuid.UUID]models.Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[uuid.UUID]models.Zone)
	for _, zone := range r.cache {
		out[zone.ID] = zone
	}
	return out
}

// StartAutoRefresh reloads the cache on a fixed interval until ctx is done.
// New datastreams become resolvable without a service restart.
func (r *Resolver) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				slog.Error("Failed to refresh topology cache", "error", err)
			}
		}
	}
}
