package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/yourbreathtaking/backend-safeindustech/internal/config"
	"github.com/yourbreathtaking/backend-safeindustech/internal/models"
	"github.com/yourbreathtaking/backend-safeindustech/internal/services"
)

// Listener consumes the sensor topic tree and hands every message to the
// ingestion pipeline. Per-message failures are logged and swallowed: the
// consumer never stops on a bad message, and the broker's at-least-once
// redelivery is the only retry mechanism.
type Listener struct {
	cfg    config.MQTTConfig
	ingest services.IIngestService
	client mqtt.Client
}

func NewListener(cfg config.MQTTConfig, ingest services.IIngestService) *Listener {
	return &Listener{
		cfg:    cfg,
		ingest: ingest,
	}
}

// Start connects and subscribes. Messages are processed on paho's handler
// goroutine; processing context is the long-lived ctx so in-flight store
// writes are cancelled on shutdown only after Stop drains the subscription.
func (l *Listener) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(l.cfg.Broker).
		SetClientID(l.cfg.ClientID).
		SetAutoReconnect(true)

	opts.SetDefaultPublishHandler(func(client mqtt.Client, msg mqtt.Message) {
		l.handle(ctx, msg)
	})

	l.client = mqtt.NewClient(opts)
	if token := l.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}

	if token := l.client.Subscribe(l.cfg.Topic, 0, nil); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", l.cfg.Topic, token.Error())
	}

	slog.Info("Subscribed to sensor topic", "broker", l.cfg.Broker, "topic", l.cfg.Topic)
	return nil
}

func (l *Listener) handle(ctx context.Context, msg mqtt.Message) {
	err := l.ingest.Process(ctx, msg.Payload())
	switch {
	case err == nil:
		slog.Debug("Reading ingested", "topic", msg.Topic())
	case errors.Is(err, models.ErrUnresolvedZone):
		// Observation persisted; only the zone update was skipped.
		slog.Info("Reading kept without zone", "topic", msg.Topic(), "reason", err)
	case errors.Is(err, models.ErrMalformedMessage), errors.Is(err, models.ErrInvalidSensorValue):
		slog.Warn("Message dropped", "topic", msg.Topic(), "reason", err)
	default:
		slog.Error("Failed to ingest reading", "topic", msg.Topic(), "error", err)
	}
}

// Stop unsubscribes and disconnects, letting in-flight handlers finish
// within the disconnect quiesce window.
func (l *Listener) Stop() {
	if l.client == nil {
		return
	}
	if token := l.client.Unsubscribe(l.cfg.Topic); token.Wait() && token.Error() != nil {
		slog.Error("MQTT unsubscribe failed", "error", token.Error())
	}
	l.client.Disconnect(250)
	slog.Info("MQTT listener stopped")
}
