package event

import "time"

const AlertQueue string = "safety_alert_events"

type AlertEventType string

const (
	// AlertRaised: a reading breached its threshold where the zone's kind
	// was previously nominal.
	AlertRaised AlertEventType = "alert_raised"
	// AlertCleared: a reading came back nominal for a kind that was alerting.
	AlertCleared AlertEventType = "alert_cleared"
	// AlertStillActive: periodic recheck heartbeat for a breach that has
	// not cleared.
	AlertStillActive AlertEventType = "alert_still_active"
)

type AlertEvent struct {
	ID         string         `json:"id"`
	EventType  AlertEventType `json:"event_type"`
	ZoneID     string         `json:"zone_id"`
	ZoneName   string         `json:"zone_name"`
	SensorType string         `json:"sensor_type"`
	Reason     string         `json:"reason,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
