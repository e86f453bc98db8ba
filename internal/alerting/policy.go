package alerting

import (
	"github.com/yourbreathtaking/backend-safeindustech/internal/config"
	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
)

// Alert texts are part of the external contract; dashboards match on them.
const (
	AlertHighTemperature = "High Temperature Detected!"
	AlertHighPressure    = "Pressure Exceeds Safe Levels!"
	AlertHighSmoke       = "High Smoke Concentration!"
	AlertSparkDetected   = "Spark Detected! Fire Risk!"
)

// Policy maps a sensor kind and value to an alert verdict. It is stateless
// and deterministic: same input, same verdict, no clock, no store.
type Policy struct {
	thresholds config.ThresholdConfig
}

func NewPolicy(thresholds config.ThresholdConfig) *Policy {
	return &Policy{thresholds: thresholds}
}

// Evaluate returns the alert reason for a reading, or ok=false when the
// reading is nominal. Numeric comparisons are strict greater-than: a value
// exactly at the threshold does not alert. Position never alerts.
func (p *Policy) Evaluate(kind models.SensorKind, value models.SensorValue) (string, bool) {
	switch kind {
	case models.KindHeat:
		if value.Numeric != nil && *value.Numeric > p.thresholds.Heat {
			return AlertHighTemperature, true
		}
	case models.KindPression:
		if value.Numeric != nil && *value.Numeric > p.thresholds.Pression {
			return AlertHighPressure, true
		}
	case models.KindSmoke:
		if value.Numeric != nil && *value.Numeric > p.thresholds.Smoke {
			return AlertHighSmoke, true
		}
	case models.KindSpark:
		if value.Flag != nil && *value.Flag {
			return AlertSparkDetected, true
		}
	case models.KindPosition:
		// No zone-alert semantics are defined for positions.
	}
	return "", false
}
