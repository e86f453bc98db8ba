package models

import "encoding/json"

// ZoneStatusResponse is the one-shot read shape of /zones/status and /alarms.
type ZoneStatusResponse struct {
	Name       string         `json:"name"`
	RiskLevel  string         `json:"risk_level"`
	Properties ZoneProperties `json:"properties"`
}

// ZoneProperties projects a zone's current state. Numeric fields are null
// until the first reading of that kind arrives; spark_detected defaults to
// false. ActiveAlerts lists every currently breaching kind's reason, while
// Alert keeps the legacy single-value semantics (the latest reading's own
// verdict).
type ZoneProperties struct {
	CurrentTemp     *float64              `json:"current_temp"`
	CurrentPressure *float64              `json:"current_pressure"`
	CurrentSmoke    *float64              `json:"current_smoke"`
	SparkDetected   bool                  `json:"spark_detected"`
	Alert           *string               `json:"alert"`
	ActiveAlerts    map[SensorKind]string `json:"active_alerts,omitempty"`
}

// FeedZone is one element of the /ws/zones broadcast. Absent values are the
// literal strings "N/A" and "None"; the dashboard depends on those
// sentinels, so the fields are deliberately untyped.
type FeedZone struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Heat     any    `json:"heat"`
	Pression any    `json:"pression"`
	Spark    any    `json:"spark"`
	Smoke    any    `json:"smoke"`
	Alert    string `json:"alert"`
}

// LatestObservationResponse is the read shape of /observations/:datastream_id.
type LatestObservationResponse struct {
	DatastreamID string          `json:"datastream_id"`
	Result       json.RawMessage `json:"result"`
	Timestamp    string          `json:"timestamp"`
}
