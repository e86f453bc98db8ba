package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestParseSensorReadingNumeric(t *testing.T) {
	dsID := uuid.New()
	payload := []byte(`{"datastream_id":"` + dsID.String() + `","result":{"value":71.3},"sensor_type":"Heat"}`)

	reading, err := ParseSensorReading(payload, testNow)
	require.NoError(t, err)
	assert.Equal(t, dsID, reading.DatastreamID)
	assert.Equal(t, KindHeat, reading.Kind)
	require.NotNil(t, reading.Value.Numeric)
	assert.Equal(t, 71.3, *reading.Value.Numeric)
	assert.Equal(t, testNow, reading.ReceivedAt)
	// The raw result object survives byte for byte for the history insert.
	assert.JSONEq(t, `{"value":71.3}`, string(reading.RawResult))
}

func TestParseSensorReadingSpark(t *testing.T) {
	dsID := uuid.New()

	reading, err := ParseSensorReading(
		[]byte(`{"datastream_id":"`+dsID.String()+`","result":{"value":true},"sensor_type":"Spark"}`), testNow)
	require.NoError(t, err)
	assert.Equal(t, KindSpark, reading.Kind)
	require.NotNil(t, reading.Value.Flag)
	assert.True(t, *reading.Value.Flag)
}

func TestParseSensorReadingPosition(t *testing.T) {
	dsID := uuid.New()

	// Position messages omit sensor_type and carry lat/lng directly.
	reading, err := ParseSensorReading(
		[]byte(`{"datastream_id":"`+dsID.String()+`","result":{"lat":48.8566,"lng":2.3522}}`), testNow)
	require.NoError(t, err)
	assert.Equal(t, KindPosition, reading.Kind)
	require.NotNil(t, reading.Value.Position)
	assert.Equal(t, 48.8566, reading.Value.Position.Lat)
	assert.Equal(t, 2.3522, reading.Value.Position.Lng)
}

func TestParseSensorReadingMalformed(t *testing.T) {
	dsID := uuid.New().String()

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{{{`},
		{"missing datastream_id", `{"result":{"value":1},"sensor_type":"Heat"}`},
		{"datastream_id not a uuid", `{"datastream_id":"sensor-42","result":{"value":1},"sensor_type":"Heat"}`},
		{"missing result", `{"datastream_id":"` + dsID + `","sensor_type":"Heat"}`},
		{"unknown sensor_type", `{"datastream_id":"` + dsID + `","result":{"value":1},"sensor_type":"Vibration"}`},
		{"position missing lng", `{"datastream_id":"` + dsID + `","result":{"lat":48.85}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSensorReading([]byte(tt.payload), testNow)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestParseSensorReadingInvalidValue(t *testing.T) {
	dsID := uuid.New().String()

	tests := []struct {
		name    string
		payload string
	}{
		{"string where number expected", `{"datastream_id":"` + dsID + `","result":{"value":"21.7"},"sensor_type":"Heat"}`},
		{"number where bool expected", `{"datastream_id":"` + dsID + `","result":{"value":1},"sensor_type":"Spark"}`},
		{"missing value field", `{"datastream_id":"` + dsID + `","result":{},"sensor_type":"Smoke"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSensorReading([]byte(tt.payload), testNow)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSensorValue)
		})
	}
}

func TestParseSensorKind(t *testing.T) {
	for _, kind := range Kinds {
		got, err := ParseSensorKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, got)
	}

	_, err := ParseSensorKind("heat")
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestRawResultRoundTrip(t *testing.T) {
	raw := RawResult(`{"value":7.25,"unit":"bar"}`)

	dbValue, err := raw.Value()
	require.NoError(t, err)

	var scanned RawResult
	require.NoError(t, scanned.Scan(dbValue))
	assert.JSONEq(t, string(raw), string(scanned))

	out, err := scanned.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":7.25,"unit":"bar"}`, string(out))
}
