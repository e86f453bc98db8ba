package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Observation is one immutable row of the raw telemetry history. Rows are
// insert-only: never updated, never deleted.
type Observation struct {
	ID             uuid.UUID `db:"id"`
	DatastreamID   uuid.UUID `db:"datastream_id"`
	PhenomenonTime time.Time `db:"phenomenon_time"`
	Result         RawResult `db:"result"`
	CreatedAt      time.Time `db:"created_at"`
}

// Datastream is reference data provisioned out-of-band; read-only here.
type Datastream struct {
	ID                  uuid.UUID `db:"id"`
	ThingID             uuid.UUID `db:"thing_id"`
	FeatureOfInterestID uuid.UUID `db:"feature_of_interest_id"`
	Name                string    `db:"name"`
}

// Zone is a physical area of the site. A zone owns its streams indirectly,
// through the shared feature_of_interest_id.
type Zone struct {
	ID                  uuid.UUID `db:"id"`
	Name                string    `db:"name"`
	RiskLevel           string    `db:"risk_level"`
	FeatureOfInterestID uuid.UUID `db:"feature_of_interest_id"`
}

// Employee carries an explicit FK to its tracker thing. The legacy schema
// joined employee to thing by the naming convention
// 'Employee Tracker - <name>'; the thing_id column replaces that.
type Employee struct {
	ID      uuid.UUID `db:"id"`
	Name    string    `db:"name"`
	ThingID uuid.UUID `db:"thing_id"`
}

// Site is the single plant record ("usine" in the legacy API).
type Site struct {
	ID       uuid.UUID `db:"id"`
	Name     string    `db:"name"`
	Location string    `db:"location"`
}

// EmployeePosition is the read-side join of an employee with the latest
// position observation of their tracker.
type EmployeePosition struct {
	EmployeeID uuid.UUID       `json:"employee_id"`
	Name       string          `json:"name"`
	Position   json.RawMessage `json:"position"`
	Timestamp  time.Time       `json:"timestamp"`
}

// RawResult stores an observation payload exactly as received. It is kept
// opaque so the history round-trips byte-for-byte through the API.
type RawResult json.RawMessage

func (r RawResult) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return []byte(r), nil
}

func (r *RawResult) Scan(value any) error {
	if value == nil {
		*r = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("RawResult: Scan failed, expected []byte but got %T", value)
	}
	buf := make([]byte, len(b))
	copy(buf, b)
	*r = buf
	return nil
}

func (r RawResult) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RawResult) UnmarshalJSON(data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	*r = buf
	return nil
}
