package trafficfeed

import (
	"context"
	"encoding/json"

	"github.com/lintang-b-s/Congestionx/pkg/congestion"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const tracerName = "github.com/lintang-b-s/Congestionx/pkg/trafficfeed"

// Message is the payload the external poller publishes on the traffic subject.
type Message struct {
	Source  string                     `json:"source,omitempty"`
	Samples []congestion.TrafficSample `json:"samples"`
}

// natsHeaderCarrier adapts nats.Msg headers for the otel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

type subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

type publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Subscribe feeds every message on subject into store. malformed messages are logged and dropped.
func Subscribe(nc subscriber, subject string, store *Store, log *zap.Logger) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		handleMsg(store, log, msg)
	})
}

func handleMsg(store *Store, log *zap.Logger, msg *nats.Msg) {
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))
	_, span := otel.Tracer(tracerName).Start(ctx, "trafficfeed.replace")
	defer span.End()

	var m Message
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		log.Warn("dropping malformed traffic message", zap.String("subject", msg.Subject), zap.Error(err))
		return
	}
	span.SetAttributes(attribute.Int("traffic.samples", len(m.Samples)))

	source := m.Source
	if source == "" {
		source = msg.Subject
	}
	store.Replace(m.Samples, source)
}

// Publish sends a full sample set, with the trace context of ctx in the headers.
func Publish(ctx context.Context, nc publisher, subject string, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	return nc.PublishMsg(msg)
}
