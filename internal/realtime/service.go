package realtime

import (
	"context"

	"viabus/pkg/logger"
)

// Service fans seat events out to local subscribers and, when a broker is
// configured, to the rest of the fleet. Publishing never returns an error:
// a missed notification costs a client one availability re-fetch, it must
// not fail the booking that triggered it.
type Service struct {
	hub      *Hub
	producer *Producer
	log      *logger.Logger
}

func NewService(hub *Hub, producer *Producer) *Service {
	return &Service{
		hub:      hub,
		producer: producer,
		log:      logger.GetDefault(),
	}
}

// PublishSeatEvent delivers the event to local subscribers and the broker.
func (s *Service) PublishSeatEvent(ctx context.Context, event SeatUpdateEvent) {
	delivered := s.hub.Publish(event)
	s.log.LogSeatEventPublished(ctx, event.RouteID.String(), event.EventType.String(), event.SeatNumber, delivered)

	if s.producer != nil {
		if err := s.producer.Publish(event); err != nil {
			s.log.LogNotifyFailure(ctx, event.RouteID.String(), event.EventType.String(), err)
		}
	}
}

// Hub exposes the subscriber registry for the streaming transport.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Close shuts the broker producer and evicts all subscribers.
func (s *Service) Close() {
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			s.log.ErrorWithContext(context.Background(), "failed to close seat event producer", err, nil)
		}
	}
	s.hub.Close()
}
