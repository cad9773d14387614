// Package rabbit publishes lifecycle events to a topic exchange. The event
// type doubles as the routing key, so consumers can bind to e.g.
// "booking.*" or just "booking.expired".
package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/metrics"
	"github.com/rideapp/ride-booking-system/pkg/rabbit"
)

const ExchangeName = "booking.events"

type Publisher struct {
	client *rabbit.RabbitMQ
}

func NewPublisher(client *rabbit.RabbitMQ) (*Publisher, error) {
	if err := client.DeclareExchange(ExchangeName); err != nil {
		return nil, fmt.Errorf("rabbit publisher: declare exchange: %w", err)
	}
	return &Publisher{client: client}, nil
}

func (p *Publisher) PublishBookingEvent(ctx context.Context, ev models.BookingEvent) error {
	const op = "Publisher.PublishBookingEvent"

	body, err := json.Marshal(ev)
	if err != nil {
		metrics.RecordEventPublish(ev.Type, err)
		return wrap.Error(ctx, fmt.Errorf("%s: marshal: %w", op, err))
	}

	err = p.client.Publish(ctx, ExchangeName, ev.Type, body)
	metrics.RecordEventPublish(ev.Type, err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: publish: %w", op, err))
	}
	return nil
}
