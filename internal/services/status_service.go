package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
	"github.com/yourbreathtaking/backend-safeindustech/internal/repository"
	"github.com/yourbreathtaking/backend-safeindustech/internal/state"
)

type IStatusService interface {
	GetZonesStatus(ctx context.Context) ([]models.ZoneStatusResponse, error)
	GetAlarms(ctx context.Context) ([]models.ZoneStatusResponse, error)
	BuildFeed(ctx context.Context) ([]models.FeedZone, error)
	GetEmployeePositions(ctx context.Context) ([]models.EmployeePosition, error)
	GetLatestObservation(ctx context.Context, datastreamID uuid.UUID) (*models.LatestObservationResponse, error)
	GetSite(ctx context.Context) (*models.Site, error)
	ListZones(ctx context.Context) ([]models.Zone, error)
}

// StatusService is the read side: every response is a pure projection of
// the zone state store joined with zone reference rows. Nothing here
// recomputes state from the observation history, so the pull and push
// surfaces can never diverge from what ingestion wrote.
type StatusService struct {
	store        *state.Store
	topology     repository.ITopologyRepository
	observations repository.IObservationRepository
}

func NewStatusService(store *state.Store, topology repository.ITopologyRepository, observations repository.IObservationRepository) IStatusService {
	return &StatusService{
		store:        store,
		topology:     topology,
		observations: observations,
	}
}

func (s *StatusService) GetZonesStatus(ctx context.Context) ([]models.ZoneStatusResponse, error) {
	zones, err := s.topology.ListZones(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.ZoneStatusResponse, 0, len(zones))
	for _, zone := range zones {
		st, _ := s.store.Get(zone.ID)
		out = append(out, models.ZoneStatusResponse{
			Name:       zone.Name,
			RiskLevel:  zone.RiskLevel,
			Properties: projectProperties(st),
		})
	}
	return out, nil
}

func (s *StatusService) GetAlarms(ctx context.Context) ([]models.ZoneStatusResponse, error) {
	all, err := s.GetZonesStatus(ctx)
	if err != nil {
		return nil, err
	}

	alarms := []models.ZoneStatusResponse{}
	for _, zone := range all {
		if zone.Properties.Alert != nil {
			alarms = append(alarms, zone)
		}
	}
	return alarms, nil
}

// BuildFeed assembles one tick of the /ws/zones broadcast. Zones without
// readings report the "N/A"/"None" sentinel strings the dashboard expects.
func (s *StatusService) BuildFeed(ctx context.Context) ([]models.FeedZone, error) {
	zones, err := s.topology.ListZones(ctx)
	if err != nil {
		return nil, err
	}

	feed := make([]models.FeedZone, 0, len(zones))
	for _, zone := range zones {
		st, _ := s.store.Get(zone.ID)
		fz := models.FeedZone{
			ID:       zone.ID.String(),
			Name:     zone.Name,
			Heat:     "N/A",
			Pression: "N/A",
			Spark:    "N/A",
			Smoke:    "N/A",
			Alert:    "None",
		}
		if st.Heat != nil {
			fz.Heat = *st.Heat
		}
		if st.Pression != nil {
			fz.Pression = *st.Pression
		}
		if st.Spark != nil {
			fz.Spark = *st.Spark
		}
		if st.Smoke != nil {
			fz.Smoke = *st.Smoke
		}
		if st.Alert != "" {
			fz.Alert = st.Alert
		}
		feed = append(feed, fz)
	}
	return feed, nil
}

func (s *StatusService) GetEmployeePositions(ctx context.Context) ([]models.EmployeePosition, error) {
	return s.observations.GetEmployeePositions(ctx)
}

func (s *StatusService) GetLatestObservation(ctx context.Context, datastreamID uuid.UUID) (*models.LatestObservationResponse, error) {
	obs, err := s.observations.GetLatestByDatastream(ctx, datastreamID)
	if err != nil {
		return nil, err
	}
	return &models.LatestObservationResponse{
		DatastreamID: datastreamID.String(),
		Result:       []byte(obs.Result),
		Timestamp:    obs.PhenomenonTime.Format(time.RFC3339Nano),
	}, nil
}

func (s *StatusService) GetSite(ctx context.Context) (*models.Site, error) {
	return s.topology.GetSite(ctx)
}

func (s *StatusService) ListZones(ctx context.Context) ([]models.Zone, error) {
	return s.topology.ListZones(ctx)
}

func projectProperties(st state.ZoneState) models.ZoneProperties {
	props := models.ZoneProperties{
		CurrentTemp:     st.Heat,
		CurrentPressure: st.Pression,
		CurrentSmoke:    st.Smoke,
	}
	if st.Spark != nil {
		props.SparkDetected = *st.Spark
	}
	if st.Alert != "" {
		alert := st.Alert
		props.Alert = &alert
	}
	if len(st.ActiveAlerts) > 0 {
		props.ActiveAlerts = st.ActiveAlerts
	}
	return props
}
