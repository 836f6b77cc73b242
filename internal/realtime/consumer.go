package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"viabus/pkg/logger"
)

// ConsumerConfig contains configuration for the seat event consumer group.
type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topic            string
	Origin           string
	SessionTimeoutMs int
	HeartbeatMs      int
	OffsetOldest     bool
}

// DefaultConsumerConfig returns a default consumer configuration.
func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:          []string{"localhost:9092"},
		GroupID:          "viabus-realtime",
		Topic:            "seat-updates",
		SessionTimeoutMs: 30000,
		HeartbeatMs:      3000,
		OffsetOldest:     false,
	}
}

// Consumer relays seat events published by other instances into the local
// hub. Events this instance produced itself are dropped by origin tag;
// the hub already delivered them directly.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	hub           *Hub
	log           *logger.Logger
	cancel        context.CancelFunc
}

func NewConsumer(config *ConsumerConfig, hub *Hub) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		consumerGroup: consumerGroup,
		config:        config,
		hub:           hub,
		log:           logger.GetDefault(),
	}, nil
}

// Start runs the consume loop until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go c.handleErrors(ctx)
	go func() {
		handler := &seatEventHandler{consumer: c}
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.consumerGroup.Consume(ctx, []string{c.config.Topic}, handler); err != nil {
					c.log.ErrorWithContext(ctx, "seat event consume failed", err, nil)
					time.Sleep(time.Second)
				}
			}
		}
	}()
}

func (c *Consumer) handleErrors(ctx context.Context) {
	for {
		select {
		case err, ok := <-c.consumerGroup.Errors():
			if !ok {
				return
			}
			c.log.ErrorWithContext(ctx, "consumer group error", err, nil)
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type seatEventHandler struct {
	consumer *Consumer
}

func (h *seatEventHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *seatEventHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *seatEventHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			h.process(session.Context(), message)
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *seatEventHandler) process(ctx context.Context, message *sarama.ConsumerMessage) {
	var event SeatUpdateEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		h.consumer.log.ErrorWithContext(ctx, "failed to decode seat event", err, map[string]interface{}{
			"topic":  message.Topic,
			"offset": message.Offset,
		})
		return
	}

	if event.Origin != "" && event.Origin == h.consumer.config.Origin {
		return
	}

	h.consumer.hub.Publish(event)
}
