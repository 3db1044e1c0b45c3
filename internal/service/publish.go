package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"mjnutrafit/coaching-api/internal/events"
)

// publish sends an event and only logs on failure; the triggering write has
// already been committed.
func publish(ctx context.Context, pub events.Publisher, log *logrus.Logger, eventType string, data map[string]any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, events.New(eventType, data)); err != nil {
		log.WithError(err).WithField("event", eventType).Warn("failed to publish event")
	}
}
