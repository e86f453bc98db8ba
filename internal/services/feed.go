package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/yourbreathtaking/backend-safeindustech/internal/ws"
)

// ZoneFeeder drives the live zone feed: each tick re-reads the full zone
// state and republishes it to every subscriber. Push-on-interval, not
// push-on-change: a subscriber sees the latest state at most one interval
// late and gets no per-change notifications.
type ZoneFeeder struct {
	status   IStatusService
	hub      *ws.Hub
	interval time.Duration
}

func NewZoneFeeder(status IStatusService, hub *ws.Hub, interval time.Duration) *ZoneFeeder {
	return &ZoneFeeder{
		status:   status,
		hub:      hub,
		interval: interval,
	}
}

// Run ticks until ctx is done. A failed tick is logged and skipped; the
// next tick rebuilds from scratch.
func (f *ZoneFeeder) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			feed, err := f.status.BuildFeed(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				slog.Error("Failed to build zone feed", "error", err)
				continue
			}

			body, err := json.Marshal(feed)
			if err != nil {
				slog.Error("Failed to marshal zone feed", "error", err)
				continue
			}
			f.hub.Broadcast(body)
		}
	}
}
