package leaderboardrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	leaderboardhandlers "github.com/ChuloWay/gamification-system/app/modules/leaderboard/infrastructure/handlers"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

type LeaderboardRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewLeaderboardRouter creates a new instance of the router.
func NewLeaderboardRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *LeaderboardRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &LeaderboardRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure sets up the middlewares and registers the leaderboard event handlers.
func (r *LeaderboardRouter) Configure(ctx context.Context, handlers leaderboardhandlers.Handlers) error {
	if r.metricsEnabled {
		r.logger.Info("Adding Prometheus router metrics middleware for Leaderboard")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		traceHandler(r.tracer),
	)

	return r.RegisterHandlers(ctx, handlers)
}

// handlerDeps provides a scannable structure for the registerHandler helper.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
}

// registerHandler decodes T from the message payload and publishes every
// result to its own topic with the inbound correlation id. Undecodable
// messages are acked and dropped; handler errors nack for redelivery.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]leaderboardhandlers.Result, error),
) {
	handlerName := "leaderboard." + topic
	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		func(msg *message.Message) error {
			correlationID := middleware.MessageCorrelationID(msg)
			ctx := attr.WithCorrelationID(msg.Context(), correlationID)

			var payload T
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				deps.logger.ErrorContext(ctx, "Failed to decode message payload",
					attr.ExtractCorrelationID(ctx),
					slog.String("handler", handlerName),
					slog.String("message_id", msg.UUID),
					attr.Error(err),
				)
				return nil
			}

			results, err := handler(ctx, &payload)
			if err != nil {
				return err
			}

			// The award has committed; a failed publish is logged rather than
			// nacked so redelivery cannot credit the points twice.
			for _, result := range results {
				out, err := newResultMessage(result, correlationID)
				if err != nil {
					deps.logger.ErrorContext(ctx, "Failed to encode result", attr.ExtractCorrelationID(ctx), slog.String("topic", result.Topic), attr.Error(err))
					continue
				}
				if err := deps.publisher.Publish(result.Topic, out); err != nil {
					deps.logger.ErrorContext(ctx, "Failed to publish result", attr.ExtractCorrelationID(ctx), slog.String("topic", result.Topic), attr.Error(err))
				}
			}
			return nil
		},
	)
}

func newResultMessage(result leaderboardhandlers.Result, correlationID string) (*message.Message, error) {
	payload, err := json.Marshal(result.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", result.Topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, msg)
	}
	msg.Metadata.Set("topic", result.Topic)
	return msg, nil
}

// RegisterHandlers binds event topics to their handler logic.
func (r *LeaderboardRouter) RegisterHandlers(ctx context.Context, handlers leaderboardhandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering Leaderboard Event Handlers")

	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
	}

	registerHandler(deps, leaderboardhandlers.AwardPointsRequestedV1, handlers.HandleAwardPointsRequested)

	return nil
}

// Close stops the router and cleans up resources.
func (r *LeaderboardRouter) Close() error {
	return r.Router.Close()
}

// traceHandler opens a span per handled message.
func traceHandler(tracer trace.Tracer) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			ctx, span := tracer.Start(msg.Context(), message.HandlerNameFromCtx(msg.Context()),
				trace.WithSpanKind(trace.SpanKindConsumer),
				trace.WithAttributes(
					attribute.String("messaging.message.id", msg.UUID),
					attribute.String("messaging.destination", message.SubscribeTopicFromCtx(msg.Context())),
				),
			)
			defer span.End()
			msg.SetContext(ctx)

			out, err := h(msg)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return out, err
		}
	}
}

var _ Router = (*LeaderboardRouter)(nil)
