package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SensorKind is the closed set of sensor types this service ingests.
// "Pression" is the wire name the sensors publish for pressure and is kept
// for compatibility with the deployed fleet.
type SensorKind string

const (
	KindHeat     SensorKind = "Heat"
	KindPression SensorKind = "Pression"
	KindSmoke    SensorKind = "Smoke"
	KindSpark    SensorKind = "Spark"
	KindPosition SensorKind = "Position"
)

// Kinds lists every sensor kind in display order. The order is load-bearing
// for deterministic projections (alert joins, feed fields).
var Kinds = []SensorKind{KindHeat, KindPression, KindSmoke, KindSpark, KindPosition}

func ParseSensorKind(s string) (SensorKind, error) {
	switch SensorKind(s) {
	case KindHeat, KindPression, KindSmoke, KindSpark, KindPosition:
		return SensorKind(s), nil
	}
	return "", fmt.Errorf("%w: unknown sensor_type %q", ErrMalformedMessage, s)
}

// IsNumeric reports whether the kind carries a float value.
func (k SensorKind) IsNumeric() bool {
	switch k {
	case KindHeat, KindPression, KindSmoke:
		return true
	}
	return false
}

// SensorValue is the tagged variant carried by a reading: exactly one of
// the branches is set, matching the kind.
type SensorValue struct {
	Numeric  *float64
	Flag     *bool
	Position *GeoPoint
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func NumericValue(v float64) SensorValue { return SensorValue{Numeric: &v} }
func FlagValue(v bool) SensorValue       { return SensorValue{Flag: &v} }
func PositionValue(p GeoPoint) SensorValue {
	return SensorValue{Position: &p}
}

// SensorReading is the transient, validated form of one broker message.
// It exists only while that message is being processed.
type SensorReading struct {
	DatastreamID uuid.UUID
	Kind         SensorKind
	Value        SensorValue
	// RawResult is the untouched "result" object from the wire, persisted
	// verbatim as the observation payload.
	RawResult  json.RawMessage
	ReceivedAt time.Time
}

// sensorMessage is the wire envelope published on iot_safeindustech/sensors/#.
type sensorMessage struct {
	DatastreamID string          `json:"datastream_id"`
	Result       json.RawMessage `json:"result"`
	SensorType   string          `json:"sensor_type"`
}

type resultEnvelope struct {
	Value json.RawMessage `json:"value"`
}

// ParseSensorReading validates a raw broker payload into a SensorReading.
// Position messages reuse the envelope but put {lat,lng} directly in
// "result" and may omit "sensor_type".
func ParseSensorReading(payload []byte, now time.Time) (*SensorReading, error) {
	var msg sensorMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.DatastreamID == "" {
		return nil, fmt.Errorf("%w: missing datastream_id", ErrMalformedMessage)
	}
	dsID, err := uuid.Parse(msg.DatastreamID)
	if err != nil {
		return nil, fmt.Errorf("%w: datastream_id %q is not a UUID", ErrMalformedMessage, msg.DatastreamID)
	}
	if len(msg.Result) == 0 {
		return nil, fmt.Errorf("%w: missing result", ErrMalformedMessage)
	}

	kind := KindPosition
	if msg.SensorType != "" {
		kind, err = ParseSensorKind(msg.SensorType)
		if err != nil {
			return nil, err
		}
	}

	value, err := parseValue(kind, msg.Result)
	if err != nil {
		return nil, err
	}

	return &SensorReading{
		DatastreamID: dsID,
		Kind:         kind,
		Value:        value,
		RawResult:    msg.Result,
		ReceivedAt:   now.UTC(),
	}, nil
}

func parseValue(kind SensorKind, result json.RawMessage) (SensorValue, error) {
	if kind == KindPosition {
		var p struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := json.Unmarshal(result, &p); err != nil {
			return SensorValue{}, fmt.Errorf("%w: position payload: %v", ErrMalformedMessage, err)
		}
		if p.Lat == nil || p.Lng == nil {
			return SensorValue{}, fmt.Errorf("%w: position payload missing lat/lng", ErrMalformedMessage)
		}
		return PositionValue(GeoPoint{Lat: *p.Lat, Lng: *p.Lng}), nil
	}

	var env resultEnvelope
	if err := json.Unmarshal(result, &env); err != nil {
		return SensorValue{}, fmt.Errorf("%w: result envelope: %v", ErrMalformedMessage, err)
	}
	if len(env.Value) == 0 {
		return SensorValue{}, fmt.Errorf("%w: result.value missing for %s", ErrInvalidSensorValue, kind)
	}

	if kind == KindSpark {
		var b bool
		if err := json.Unmarshal(env.Value, &b); err != nil {
			return SensorValue{}, fmt.Errorf("%w: %s value %s is not a boolean", ErrInvalidSensorValue, kind, env.Value)
		}
		return FlagValue(b), nil
	}

	var f float64
	if err := json.Unmarshal(env.Value, &f); err != nil {
		// Numeric kinds are never coerced: "21.7" as a string is rejected,
		// not parsed.
		return SensorValue{}, fmt.Errorf("%w: %s value %s is not numeric", ErrInvalidSensorValue, kind, env.Value)
	}
	return NumericValue(f), nil
}
