package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
	"github.com/yourbreathtaking/backend-safeindustech/internal/state"
)

type fakeTopologyRepo struct {
	zones []models.Zone
	site  *models.Site
}

func (f *fakeTopologyRepo) GetZoneByDatastream(context.Context, uuid.UUID) (*models.Zone, error) {
	return nil, models.ErrUnresolvedZone
}

func (f *fakeTopologyRepo) LoadDatastreamZones(context.Context) (map[uuid.UUID]models.Zone, error) {
	return map[uuid.UUID]models.Zone{}, nil
}

func (f *fakeTopologyRepo) ListZones(context.Context) ([]models.Zone, error) {
	return f.zones, nil
}

func (f *fakeTopologyRepo) GetSite(context.Context) (*models.Site, error) {
	if f.site == nil {
		return nil, models.ErrNotFound
	}
	return f.site, nil
}

func statusFixture(t *testing.T) (IStatusService, *state.Store, models.Zone, models.Zone) {
	t.Helper()

	hot := models.Zone{ID: uuid.New(), Name: "Furnace Room", RiskLevel: "high"}
	quiet := models.Zone{ID: uuid.New(), Name: "Warehouse", RiskLevel: "low"}

	store := state.NewStore(nil)
	topo := &fakeTopologyRepo{zones: []models.Zone{hot, quiet}}
	svc := NewStatusService(store, topo, &fakeObservationRepo{})
	return svc, store, hot, quiet
}

func TestGetZonesStatusProjectsStoreState(t *testing.T) {
	svc, store, hot, _ := statusFixture(t)
	ctx := context.Background()

	store.Apply(ctx, hot.ID, models.KindHeat, models.NumericValue(88.5), "High Temperature Detected!", true)
	store.Apply(ctx, hot.ID, models.KindSmoke, models.NumericValue(2.0), "", false)

	statuses, err := svc.GetZonesStatus(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	byName := map[string]models.ZoneStatusResponse{}
	for _, s := range statuses {
		byName[s.Name] = s
	}

	furnace := byName["Furnace Room"]
	assert.Equal(t, "high", furnace.RiskLevel)
	require.NotNil(t, furnace.Properties.CurrentTemp)
	assert.Equal(t, 88.5, *furnace.Properties.CurrentTemp)
	require.NotNil(t, furnace.Properties.CurrentSmoke)
	assert.Equal(t, 2.0, *furnace.Properties.CurrentSmoke)
	// The displayed alert follows the latest reading's verdict; the heat
	// breach is still visible in active_alerts.
	assert.Nil(t, furnace.Properties.Alert)
	assert.Equal(t, "High Temperature Detected!", furnace.Properties.ActiveAlerts[models.KindHeat])

	warehouse := byName["Warehouse"]
	assert.Nil(t, warehouse.Properties.CurrentTemp)
	assert.Nil(t, warehouse.Properties.Alert)
	assert.Empty(t, warehouse.Properties.ActiveAlerts)
}

func TestGetAlarmsFiltersToAlertingZones(t *testing.T) {
	svc, store, hot, _ := statusFixture(t)
	ctx := context.Background()

	alarms, err := svc.GetAlarms(ctx)
	require.NoError(t, err)
	assert.Empty(t, alarms)

	store.Apply(ctx, hot.ID, models.KindSpark, models.FlagValue(true), "Spark Detected! Fire Risk!", true)

	alarms, err = svc.GetAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, alarms, 1)
	assert.Equal(t, "Furnace Room", alarms[0].Name)
	require.NotNil(t, alarms[0].Properties.Alert)
	assert.Equal(t, "Spark Detected! Fire Risk!", *alarms[0].Properties.Alert)
	assert.True(t, alarms[0].Properties.SparkDetected)
}

func TestBuildFeedSentinels(t *testing.T) {
	svc, store, hot, _ := statusFixture(t)
	ctx := context.Background()

	store.Apply(ctx, hot.ID, models.KindHeat, models.NumericValue(95.0), "High Temperature Detected!", true)

	feed, err := svc.BuildFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	byName := map[string]models.FeedZone{}
	for _, fz := range feed {
		byName[fz.Name] = fz
	}

	furnace := byName["Furnace Room"]
	assert.Equal(t, hot.ID.String(), furnace.ID)
	assert.Equal(t, 95.0, furnace.Heat)
	assert.Equal(t, "N/A", furnace.Pression)
	assert.Equal(t, "N/A", furnace.Spark)
	assert.Equal(t, "High Temperature Detected!", furnace.Alert)

	warehouse := byName["Warehouse"]
	assert.Equal(t, "N/A", warehouse.Heat)
	assert.Equal(t, "None", warehouse.Alert)
}

func TestGetLatestObservation(t *testing.T) {
	dsID := uuid.New()
	when := time.Date(2026, 5, 2, 13, 40, 12, 500000000, time.UTC)
	repo := &fakeObservationRepo{latest: &models.Observation{
		ID:             uuid.New(),
		DatastreamID:   dsID,
		PhenomenonTime: when,
		Result:         models.RawResult(`{"value":42.0}`),
	}}
	svc := NewStatusService(state.NewStore(nil), &fakeTopologyRepo{}, repo)

	resp, err := svc.GetLatestObservation(context.Background(), dsID)
	require.NoError(t, err)
	assert.Equal(t, dsID.String(), resp.DatastreamID)
	assert.Equal(t, when.Format(time.RFC3339Nano), resp.Timestamp)
	assert.JSONEq(t, `{"value":42.0}`, string(resp.Result))
}

func TestGetLatestObservationNotFound(t *testing.T) {
	svc := NewStatusService(state.NewStore(nil), &fakeTopologyRepo{}, &fakeObservationRepo{})

	_, err := svc.GetLatestObservation(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetSite(t *testing.T) {
	site := &models.Site{ID: uuid.New(), Name: "SafeIndusTech Plant", Location: "Lyon"}
	svc := NewStatusService(state.NewStore(nil), &fakeTopologyRepo{site: site}, &fakeObservationRepo{})

	got, err := svc.GetSite(context.Background())
	require.NoError(t, err)
	assert.Equal(t, site, got)
}
