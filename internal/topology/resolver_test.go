package topology

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
)

type fakeTopologyRepo struct {
	mu          sync.Mutex
	mapping     map[uuid.UUID]models.Zone
	loadCalls   int
	lookupCalls int
}

func (f *fakeTopologyRepo) GetZoneByDatastream(_ context.Context, datastreamID uuid.UUID) (*models.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	zone, ok := f.mapping[datastreamID]
	if !ok {
		return nil, models.ErrUnresolvedZone
	}
	return &zone, nil
}

func (f *fakeTopologyRepo) LoadDatastreamZones(context.Context) (map[uuid.UUID]models.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	out := make(map[uuid.UUID]models.Zone, len(f.mapping))
	for k, v := range f.mapping {
		out[k] = v
	}
	return out, nil
}

func (f *fakeTopologyRepo) ListZones(context.Context) ([]models.Zone, error) {
	return nil, nil
}

func (f *fakeTopologyRepo) GetSite(context.Context) (*models.Site, error) {
	return nil, models.ErrNotFound
}

func TestResolveFromCache(t *testing.T) {
	zone := models.Zone{ID: uuid.New(), Name: "Boiler Room", RiskLevel: "high"}
	dsID := uuid.New()
	repo := &fakeTopologyRepo{mapping: map[uuid.UUID]models.Zone{dsID: zone}}

	r := NewResolver(repo)
	require.NoError(t, r.Refresh(context.Background()))

	got, err := r.Resolve(context.Background(), dsID)
	require.NoError(t, err)
	assert.Equal(t, zone, *got)
	assert.Zero(t, repo.lookupCalls)
}

func TestResolveColdMissFallsThroughAndCaches(t *testing.T) {
	zone := models.Zone{ID: uuid.New(), Name: "Boiler Room", RiskLevel: "high"}
	dsID := uuid.New()
	repo := &fakeTopologyRepo{mapping: map[uuid.UUID]models.Zone{dsID: zone}}

	// No Refresh: the cache starts empty, like a datastream provisioned
	// after the last reload.
	r := NewResolver(repo)

	got, err := r.Resolve(context.Background(), dsID)
	require.NoError(t, err)
	assert.Equal(t, zone, *got)
	assert.Equal(t, 1, repo.lookupCalls)

	// Second lookup is a cache hit.
	_, err = r.Resolve(context.Background(), dsID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lookupCalls)
}

func TestResolveUnknownDatastream(t *testing.T) {
	r := NewResolver(&fakeTopologyRepo{mapping: map[uuid.UUID]models.Zone{}})

	_, err := r.Resolve(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrUnresolvedZone)
}

func TestRefreshPicksUpNewDatastreams(t *testing.T) {
	repo := &fakeTopologyRepo{mapping: map[uuid.UUID]models.Zone{}}
	r := NewResolver(repo)
	require.NoError(t, r.Refresh(context.Background()))

	zone := models.Zone{ID: uuid.New(), Name: "Paint Shop", RiskLevel: "medium"}
	dsID := uuid.New()
	repo.mu.Lock()
	repo.mapping[dsID] = zone
	repo.mu.Unlock()

	require.NoError(t, r.Refresh(context.Background()))

	got, err := r.Resolve(context.Background(), dsID)
	require.NoError(t, err)
	assert.Equal(t, zone, *got)
}

func TestZonesKeyedByZoneID(t *testing.T) {
	zone := models.Zone{ID: uuid.New(), Name: "Boiler Room", RiskLevel: "high"}
	heatDS, smokeDS := uuid.New(), uuid.New()
	repo := &fakeTopologyRepo{mapping: map[uuid.UUID]models.Zone{
		heatDS:  zone,
		smokeDS: zone,
	}}

	r := NewResolver(repo)
	require.NoError(t, r.Refresh(context.Background()))

	zones := r.Zones()
	// Two datastreams, one zone.
	require.Len(t, zones, 1)
	assert.Equal(t, zone, zones[zone.ID])
}
