// Package eventbus connects the service to NATS JetStream through watermill.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// StreamName is the JetStream stream carrying every gamification subject.
const StreamName = "gamification"

// Bus holds the watermill publisher and subscriber sharing one NATS server.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Logger     watermill.LoggerAdapter

	conn *nc.Conn
}

// connectOptions reconnects forever, two seconds apart.
func connectOptions(logger watermill.LoggerAdapter) []nc.Option {
	return []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
		nc.ErrorHandler(func(_ *nc.Conn, s *nc.Subscription, err error) {
			if s != nil {
				logger.Error("Error in subscription", err, watermill.LogFields{
					"subject": s.Subject,
					"queue":   s.Queue,
				})
			} else {
				logger.Error("Error in connection", err, nil)
			}
		}),
	}
}

// Connect dials NATS, makes sure the stream exists and builds the watermill
// publisher and subscriber.
func Connect(natsURL string, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	options := connectOptions(wmLogger)

	conn, err := nc.Connect(natsURL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	if err := CreateStream(js, StreamName); err != nil {
		conn.Close()
		return nil, err
	}

	// Streams are provisioned above: watermill would name a stream after
	// each topic, and dotted topics are not valid stream names.
	jsConfig := nats.JetStreamConfig{
		Disabled:      false,
		AutoProvision: false,
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Marshaler:         &nats.NATSMarshaler{},
			JetStream:         jsConfig,
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill NATS publisher: %w", err)
	}

	subConfig := jsConfig
	subConfig.SubscribeOptions = []nc.SubOpt{
		nc.DeliverNew(),
		nc.AckExplicit(),
	}
	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Unmarshaler:       &nats.NATSMarshaler{},
			JetStream:         subConfig,
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill NATS subscriber: %w", err)
	}

	return &Bus{
		Publisher:  publisher,
		Subscriber: subscriber,
		Logger:     wmLogger,
		conn:       conn,
	}, nil
}

// CreateStream adds a stream covering name.> unless it already exists.
func CreateStream(js nc.JetStreamContext, name string) error {
	_, err := js.AddStream(&nc.StreamConfig{
		Name:     name,
		Subjects: []string{name + ".>"},
	})
	if err != nil && !errors.Is(err, nc.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("failed to add stream: %w", err)
	}
	return nil
}

// Close shuts down the subscriber, the publisher and the stream connection.
func (b *Bus) Close() error {
	var errs []error
	if err := b.Subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close subscriber: %w", err))
	}
	if err := b.Publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	if b.conn != nil {
		b.conn.Close()
	}
	return errors.Join(errs...)
}
