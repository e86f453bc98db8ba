package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yourbreathtaking/backend-safeindustech/internal/alerting"
	"github.com/yourbreathtaking/backend-safeindustech/internal/event"
	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
	"github.com/yourbreathtaking/backend-safeindustech/internal/repository"
	"github.com/yourbreathtaking/backend-safeindustech/internal/state"
)

// ZoneResolver is the slice of the topology resolver the pipeline needs.
type ZoneResolver interface {
	Resolve(ctx context.Context, datastreamID uuid.UUID) (*models.Zone, error)
	Zones() map[uuid.UUID]models.Zone
}

type IIngestService interface {
	Process(ctx context.Context, payload []byte) error
}

// IngestService is the one ingestion pipeline of the process: it turns a
// raw broker message into an observation row and a zone-state merge.
// Exactly one instance is subscribed per process; a second subscription
// would double-count observations.
type IngestService struct {
	observations repository.IObservationRepository
	resolver     ZoneResolver
	policy       *alerting.Policy
	store        *state.Store
	publisher    event.IAlertPublisher
}

func NewIngestService(
	observations repository.IObservationRepository,
	resolver ZoneResolver,
	policy *alerting.Policy,
	store *state.Store,
	publisher event.IAlertPublisher,
) *IngestService {
	return &IngestService{
		observations: observations,
		resolver:     resolver,
		policy:       policy,
		store:        store,
		publisher:    publisher,
	}
}

// Process handles one broker message end to end. Failures are local to the
// message: the caller logs and moves on, it never stops consuming.
//
// Outcomes map to the ingest taxonomy:
//   - ErrMalformedMessage / ErrInvalidSensorValue: dropped before any write
//   - ErrStoreUnavailable: the observation insert failed; nothing else ran
//   - ErrUnresolvedZone: observation persisted, no zone-state update
//     (informational, not a hard failure)
//   - nil: observation persisted and zone state merged
func (s *IngestService) Process(ctx context.Context, payload []byte) error {
	reading, err := models.ParseSensorReading(payload, time.Now())
	if err != nil {
		return err
	}

	// The observation history is authoritative raw data, independent of
	// alerting: append before resolving, even for zoneless datastreams.
	obs := &models.Observation{
		ID:             uuid.New(),
		DatastreamID:   reading.DatastreamID,
		PhenomenonTime: reading.ReceivedAt,
		Result:         models.RawResult(reading.RawResult),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.observations.Append(ctx, obs); err != nil {
		return err
	}

	// Positions carry no zone-alert semantics; they surface through the
	// employee positions read.
	if reading.Kind == models.KindPosition {
		return nil
	}

	zone, err := s.resolver.Resolve(ctx, reading.DatastreamID)
	if err != nil {
		return err
	}

	reason, breached := s.policy.Evaluate(reading.Kind, reading.Value)

	res, err := s.store.Apply(ctx, zone.ID, reading.Kind, reading.Value, reason, breached)
	if err != nil {
		// The in-memory merge already happened; a failed mirror write only
		// delays external readers until the next reading for this zone.
		slog.Warn("Zone state mirror write failed", "zone", zone.Name, "error", err)
	}

	s.publishTransition(ctx, zone, reading.Kind, reason, breached, res.WasAlerting)
	return nil
}

func (s *IngestService) publishTransition(ctx context.Context, zone *models.Zone, kind models.SensorKind, reason string, breached, wasAlerting bool) {
	var eventType event.AlertEventType
	switch {
	case breached && !wasAlerting:
		eventType = event.AlertRaised
	case !breached && wasAlerting:
		eventType = event.AlertCleared
	default:
		return
	}

	ev := event.AlertEvent{
		ID:         uuid.New().String(),
		EventType:  eventType,
		ZoneID:     zone.ID.String(),
		ZoneName:   zone.Name,
		SensorType: string(kind),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		// Alert events are best-effort; the zone state itself is the truth.
		slog.Error("Failed to publish alert event", "zone", zone.Name, "type", eventType, "error", err)
	}
}

// StartAlertRecheck republishes a heartbeat event for every still-breaching
// zone kind on a fixed interval, so the notification pipeline can escalate
// alerts that nobody cleared. It never mutates zone state.
func (s *IngestService) StartAlertRecheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.recheck(ctx)
		}
	}
}

func (s *IngestService) recheck(ctx context.Context) {
	zones := s.resolver.Zones()
	for zoneID, st := range s.store.Snapshot() {
		zone, ok := zones[zoneID]
		if !ok {
			continue
		}
		for kind, reason := range st.ActiveAlerts {
			ev := event.AlertEvent{
				ID:         uuid.New().String(),
				EventType:  event.AlertStillActive,
				ZoneID:     zoneID.String(),
				ZoneName:   zone.Name,
				SensorType: string(kind),
				Reason:     reason,
				OccurredAt: time.Now().UTC(),
			}
			if err := s.publisher.PublishEvent(ctx, ev); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				slog.Error("Failed to publish recheck event", "zone", zone.Name, "error", err)
			}
		}
	}
}
