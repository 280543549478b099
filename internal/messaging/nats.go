package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/stan.go"
)

type Config struct {
	URL       string
	ClusterID string
	ClientID  string
}

// NATSClient publishes domain events to NATS Streaming. With an empty URL it
// runs disabled and every publish becomes a no-op, so the API works without
// a broker.
type NATSClient struct {
	conn stan.Conn
}

func NewNATSClient(cfg Config) (*NATSClient, error) {
	if cfg.URL == "" {
		slog.Info("NATS disabled, events will not be published")
		return &NATSClient{}, nil
	}

	conn, err := stan.Connect(cfg.ClusterID, cfg.ClientID, stan.NatsURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL, "cluster", cfg.ClusterID, "client", cfg.ClientID)

	return &NATSClient{conn: conn}, nil
}

func (nc *NATSClient) Publish(subject string, data interface{}) error {
	if nc.conn == nil {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	return nil
}

func (nc *NATSClient) Subscribe(subject string, handler stan.MsgHandler) (stan.Subscription, error) {
	if nc.conn == nil {
		return nil, fmt.Errorf("NATS is disabled")
	}

	sub, err := nc.conn.Subscribe(subject, handler,
		stan.DurableName(subject+"-durable"),
		stan.AckWait(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	return sub, nil
}

func (nc *NATSClient) Close() error {
	if nc.conn == nil {
		return nil
	}
	return nc.conn.Close()
}
