package state

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
)

// ZoneState is the aggregated safety state of one zone: the last known
// value per sensor kind plus the alerting state. "Last known" means the
// most recently ingested reading of that kind, not the most recent by
// sensor clock; ingestion order drives the write.
type ZoneState struct {
	Heat     *float64 `json:"heat,omitempty"`
	Pression *float64 `json:"pression,omitempty"`
	Smoke    *float64 `json:"smoke,omitempty"`
	Spark    *bool    `json:"spark,omitempty"`

	// ActiveAlerts holds the reason for every kind whose latest reading
	// breached its threshold. A reading sets or clears only its own kind's
	// entry, so one sensor can no longer erase another's standing alert.
	ActiveAlerts map[models.SensorKind]string `json:"active_alerts,omitempty"`

	// Alert is the legacy display value: the verdict of the most recently
	// processed reading for this zone, "" when that reading was nominal.
	Alert string `json:"alert,omitempty"`

	// LastKind is the kind that last wrote this state.
	LastKind  models.SensorKind `json:"last_kind,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s ZoneState) clone() ZoneState {
	out := s
	if s.Heat != nil {
		v := *s.Heat
		out.Heat = &v
	}
	if s.Pression != nil {
		v := *s.Pression
		out.Pression = &v
	}
	if s.Smoke != nil {
		v := *s.Smoke
		out.Smoke = &v
	}
	if s.Spark != nil {
		v := *s.Spark
		out.Spark = &v
	}
	if s.ActiveAlerts != nil {
		out.ActiveAlerts = make(map[models.SensorKind]string, len(s.ActiveAlerts))
		for k, v := range s.ActiveAlerts {
			out.ActiveAlerts[k] = v
		}
	}
	return out
}

// Mirror persists merged zone states outside the process so dashboards and
// restarts see the latest values. Failures are reported, not fatal: the
// observation history in Postgres stays the record of truth.
type Mirror interface {
	Save(ctx context.Context, zoneID uuid.UUID, state ZoneState) error
	LoadAll(ctx context.Context) (map[uuid.UUID]ZoneState, error)
}

// NoopMirror is used in tests and when no Redis is configured.
type NoopMirror struct{}

func (NoopMirror) Save(context.Context, uuid.UUID, ZoneState) error { return nil }
func (NoopMirror) LoadAll(context.Context) (map[uuid.UUID]ZoneState, error) {
	return map[uuid.UUID]ZoneState{}, nil
}

// Store holds the current ZoneState per zone. All mutation goes through
// Apply, which takes a per-zone lock: concurrent callers for the same zone
// serialize, different zones do not contend. There is deliberately no other
// write path.
type Store struct {
	mirror Mirror

	mu    sync.RWMutex
	zones map[uuid.UUID]*zoneEntry
}

type zoneEntry struct {
	mu    sync.Mutex
	state ZoneState
	seq   uint64

	// mirrorMu serializes mirror writes for this zone separately from the
	// state lock, so Redis I/O never stalls the merge path. mirrored is the
	// seq of the last successfully mirrored state.
	mirrorMu sync.Mutex
	mirrored uint64
}

func NewStore(mirror Mirror) *Store {
	if mirror == nil {
		mirror = NoopMirror{}
	}
	return &Store{
		mirror: mirror,
		zones:  make(map[uuid.UUID]*zoneEntry),
	}
}

func (s *Store) entry(zoneID uuid.UUID) *zoneEntry {
	s.mu.RLock()
	e, ok := s.zones[zoneID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.zones[zoneID]; ok {
		return e
	}
	e = &zoneEntry{state: ZoneState{ActiveAlerts: make(map[models.SensorKind]string)}}
	s.zones[zoneID] = e
	return e
}

// ApplyResult reports one merge: the state after it, and whether the kind
// already had an active alert before it (for raise/clear transitions).
type ApplyResult struct {
	State       ZoneState
	WasAlerting bool
}

// Apply merges one reading's outcome into the zone state as a single
// indivisible operation: set the kind's value, set or clear the kind's
// alert entry, record the reading's own verdict as the displayed alert.
// The state lock covers only the synchronous merge; the snapshot is
// mirrored after release, with a per-zone sequence check so a stale
// snapshot never overwrites a newer mirrored one. A mirror failure is
// returned alongside the (already applied) result.
func (s *Store) Apply(ctx context.Context, zoneID uuid.UUID, kind models.SensorKind, value models.SensorValue, reason string, alerting bool) (ApplyResult, error) {
	e := s.entry(zoneID)

	e.mu.Lock()

	_, wasAlerting := e.state.ActiveAlerts[kind]

	switch kind {
	case models.KindHeat:
		if value.Numeric != nil {
			v := *value.Numeric
			e.state.Heat = &v
		}
	case models.KindPression:
		if value.Numeric != nil {
			v := *value.Numeric
			e.state.Pression = &v
		}
	case models.KindSmoke:
		if value.Numeric != nil {
			v := *value.Numeric
			e.state.Smoke = &v
		}
	case models.KindSpark:
		if value.Flag != nil {
			v := *value.Flag
			e.state.Spark = &v
		}
	}

	if alerting {
		e.state.ActiveAlerts[kind] = reason
		e.state.Alert = reason
	} else {
		delete(e.state.ActiveAlerts, kind)
		e.state.Alert = ""
	}
	e.state.LastKind = kind
	e.state.UpdatedAt = time.Now().UTC()

	e.seq++
	seq := e.seq
	res := ApplyResult{State: e.state.clone(), WasAlerting: wasAlerting}
	e.mu.Unlock()

	e.mirrorMu.Lock()
	defer e.mirrorMu.Unlock()
	if seq <= e.mirrored {
		// A newer state for this zone was mirrored while we waited.
		return res, nil
	}
	if err := s.mirror.Save(ctx, zoneID, res.State); err != nil {
		return res, err
	}
	e.mirrored = seq
	return res, nil
}

// Get returns a copy of the zone's state. A zone with no readings yet
// reports ok=false and a zero-value state, never an error.
func (s *Store) Get(zoneID uuid.UUID) (ZoneState, bool) {
	s.mu.RLock()
	e, ok := s.zones[zoneID]
	s.mu.RUnlock()
	if !ok {
		return ZoneState{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone(), true
}

// Snapshot copies every zone's current state for the publisher. No locks
// escape this call.
func (s *Store) Snapshot() map[uuid.UUID]ZoneState {
	s.mu.RLock()
	entries := make(map[uuid.UUID]*zoneEntry, len(s.zones))
	for id, e := range s.zones {
		entries[id] = e
	}
	s.mu.RUnlock()

	out := make(map[uuid.UUID]ZoneState, len(entries))
	for id, e := range entries {
		e.mu.Lock()
		out[id] = e.state.clone()
		e.mu.Unlock()
	}
	return out
}

// Warm seeds the store from the mirror at startup so the feed does not
// report "N/A" for zones that were current before a restart. States already
// present in memory win over mirrored ones.
func (s *Store) Warm(ctx context.Context) error {
	mirrored, err := s.mirror.LoadAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range mirrored {
		if _, ok := s.zones[id]; ok {
			continue
		}
		if st.ActiveAlerts == nil {
			st.ActiveAlerts = make(map[models.SensorKind]string)
		}
		s.zones[id] = &zoneEntry{state: st}
	}
	return nil
}
