package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
)

// ITopologyRepository reads the site topology reference data. Everything
// here is provisioned out-of-band and read-only to this service.
type ITopologyRepository interface {
	GetZoneByDatastream(ctx context.Context, datastreamID uuid.UUID) (*models.Zone, error)
	LoadDatastreamZones(ctx context.Context) (map[uuid.UUID]models.Zone, error)
	ListZones(ctx context.Context) ([]models.Zone, error)
	GetSite(ctx context.Context) (*models.Site, error)
}

type TopologyRepository struct {
	db *sqlx.DB
}

func NewTopologyRepository(db *sqlx.DB) ITopologyRepository {
	return &TopologyRepository{
		db: db,
	}
}

// GetZoneByDatastream resolves the zone sharing the datastream's feature of
// interest. Several datastreams (heat, smoke, spark...) map to one zone.
func (r *TopologyRepository) GetZoneByDatastream(ctx context.Context, datastreamID uuid.UUID) (*models.Zone, error) {
	var zone models.Zone
	query := `
        SELECT z.id, z.name, z.risk_level, z.feature_of_interest_id
        FROM zone z
        JOIN datastream d ON d.feature_of_interest_id = z.feature_of_interest_id
        WHERE d.id = $1
        LIMIT 1
    `
	err := r.db.GetContext(ctx, &zone, query, datastreamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: datastream %s", models.ErrUnresolvedZone, datastreamID)
		}
		return nil, fmt.Errorf("%w: resolve zone: %v", models.ErrStoreUnavailable, err)
	}
	return &zone, nil
}

// LoadDatastreamZones loads the full datastream -> zone mapping in one
// query, for the resolver cache.
func (r *TopologyRepository) LoadDatastreamZones(ctx context.Context) (map[uuid.UUID]models.Zone, error) {
	query := `
        SELECT d.id AS datastream_id, z.id, z.name, z.risk_level, z.feature_of_interest_id
        FROM datastream d
        JOIN zone z ON z.feature_of_interest_id = d.feature_of_interest_id
    `
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: load topology: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	mapping := make(map[uuid.UUID]models.Zone)
	for rows.Next() {
		var dsID uuid.UUID
		var zone models.Zone
		if err := rows.Scan(&dsID, &zone.ID, &zone.Name, &zone.RiskLevel, &zone.FeatureOfInterestID); err != nil {
			return nil, fmt.Errorf("%w: scan topology row: %v", models.ErrStoreUnavailable, err)
		}
		mapping[dsID] = zone
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load topology: %v", models.ErrStoreUnavailable, err)
	}
	return mapping, nil
}

func (r *TopologyRepository) ListZones(ctx context.Context) ([]models.Zone, error) {
	zones := []models.Zone{}
	query := `SELECT id, name, risk_level, feature_of_interest_id FROM zone ORDER BY name`
	if err := r.db.SelectContext(ctx, &zones, query); err != nil {
		return nil, fmt.Errorf("%w: list zones: %v", models.ErrStoreUnavailable, err)
	}
	return zones, nil
}

func (r *TopologyRepository) GetSite(ctx context.Context) (*models.Site, error) {
	var site models.Site
	query := `SELECT id, name, location FROM usine LIMIT 1`
	err := r.db.GetContext(ctx, &site, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: usine", models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: get site: %v", models.ErrStoreUnavailable, err)
	}
	return &site, nil
}
