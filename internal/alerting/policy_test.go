package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourbreathtaking/backend-safeindustech/internal/config"
	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
)

func testPolicy() *Policy {
	return NewPolicy(config.ThresholdConfig{
		Heat:     70.0,
		Pression: 5.0,
		Smoke:    5.0,
	})
}

func TestEvaluateHeat(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name     string
		value    float64
		want     string
		breached bool
	}{
		{"well below threshold", 21.5, "", false},
		{"exactly at threshold does not alert", 70.0, "", false},
		{"just above threshold alerts", 70.0001, AlertHighTemperature, true},
		{"far above threshold alerts", 250.0, AlertHighTemperature, true},
		{"negative value", -10.0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, breached := p.Evaluate(models.KindHeat, models.NumericValue(tt.value))
			assert.Equal(t, tt.breached, breached)
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestEvaluatePression(t *testing.T) {
	p := testPolicy()

	reason, breached := p.Evaluate(models.KindPression, models.NumericValue(5.0))
	assert.False(t, breached)
	assert.Empty(t, reason)

	reason, breached = p.Evaluate(models.KindPression, models.NumericValue(5.1))
	assert.True(t, breached)
	assert.Equal(t, AlertHighPressure, reason)
}

func TestEvaluateSmoke(t *testing.T) {
	p := testPolicy()

	reason, breached := p.Evaluate(models.KindSmoke, models.NumericValue(6.2))
	assert.True(t, breached)
	assert.Equal(t, AlertHighSmoke, reason)

	_, breached = p.Evaluate(models.KindSmoke, models.NumericValue(0.3))
	assert.False(t, breached)
}

func TestEvaluateSpark(t *testing.T) {
	p := testPolicy()

	reason, breached := p.Evaluate(models.KindSpark, models.FlagValue(true))
	assert.True(t, breached)
	assert.Equal(t, AlertSparkDetected, reason)

	reason, breached = p.Evaluate(models.KindSpark, models.FlagValue(false))
	assert.False(t, breached)
	assert.Empty(t, reason)
}

func TestEvaluatePositionNeverAlerts(t *testing.T) {
	p := testPolicy()

	_, breached := p.Evaluate(models.KindPosition, models.PositionValue(models.GeoPoint{Lat: 48.85, Lng: 2.35}))
	assert.False(t, breached)
}

func TestEvaluateMismatchedValueBranch(t *testing.T) {
	p := testPolicy()

	// A numeric kind carrying no numeric branch stays nominal instead of
	// panicking on a nil pointer.
	_, breached := p.Evaluate(models.KindHeat, models.FlagValue(true))
	assert.False(t, breached)

	_, breached = p.Evaluate(models.KindSpark, models.NumericValue(99))
	assert.False(t, breached)
}
