package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
	"github.com/yourbreathtaking/backend-safeindustech/internal/utils"
)

type IObservationRepository interface {
	Append(ctx context.Context, obs *models.Observation) error
	GetLatestByDatastream(ctx context.Context, datastreamID uuid.UUID) (*models.Observation, error)
	GetEmployeePositions(ctx context.Context) ([]models.EmployeePosition, error)
}

type ObservationRepository struct {
	db *sqlx.DB
}

func NewObservationRepository(db *sqlx.DB) IObservationRepository {
	return &ObservationRepository{
		db: db,
	}
}

// Append inserts one observation row. The table is append-only; there is no
// update or delete path anywhere in this service.
func (r *ObservationRepository) Append(ctx context.Context, obs *models.Observation) error {
	query := `
        INSERT INTO observation (id, datastream_id, phenomenon_time, result, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `

	err := utils.ExecWithCheck(ctx, r.db, query, utils.ExecInsert,
		obs.ID,
		obs.DatastreamID,
		obs.PhenomenonTime,
		obs.Result,
		obs.CreatedAt,
	)
	if err != nil {
		slog.Error("Error inserting observation", "datastream_id", obs.DatastreamID, "error", err)
		return fmt.Errorf("%w: insert observation: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *ObservationRepository) GetLatestByDatastream(ctx context.Context, datastreamID uuid.UUID) (*models.Observation, error) {
	var obs models.Observation
	query := `
        SELECT id, datastream_id, phenomenon_time, result, created_at
        FROM observation
        WHERE datastream_id = $1
        ORDER BY phenomenon_time DESC
        LIMIT 1
    `
	err := r.db.GetContext(ctx, &obs, query, datastreamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no observation for datastream %s", models.ErrNotFound, datastreamID)
		}
		return nil, fmt.Errorf("%w: latest observation: %v", models.ErrStoreUnavailable, err)
	}
	return &obs, nil
}

// GetEmployeePositions returns the latest position observation per employee.
// The join runs over the employee.thing_id FK; the old name-concatenation
// convention ('Employee Tracker - <name>') is gone.
func (r *ObservationRepository) GetEmployeePositions(ctx context.Context) ([]models.EmployeePosition, error) {
	query := `
        WITH latest_obs AS (
            SELECT d.id AS ds_id, MAX(o.phenomenon_time) AS max_time
            FROM observation o
            JOIN datastream d ON o.datastream_id = d.id
            GROUP BY d.id
        )
        SELECT
            e.id AS employee_id,
            e.name,
            o.result AS position,
            o.phenomenon_time AS timestamp
        FROM employee e
        JOIN datastream d ON d.thing_id = e.thing_id
        JOIN latest_obs lo ON lo.ds_id = d.id
        JOIN observation o ON o.datastream_id = d.id AND o.phenomenon_time = lo.max_time
        ORDER BY e.name
    `

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: employee positions: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	positions := []models.EmployeePosition{}
	for rows.Next() {
		var pos models.EmployeePosition
		var raw models.RawResult
		if err := rows.Scan(&pos.EmployeeID, &pos.Name, &raw, &pos.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan employee position: %v", models.ErrStoreUnavailable, err)
		}
		pos.Position = []byte(raw)
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: employee positions: %v", models.ErrStoreUnavailable, err)
	}
	return positions, nil
}
