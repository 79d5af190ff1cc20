package hermes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// QueueGroup is shared by every steward instance so each submitted piece of
// feedback is processed once.
const QueueGroup = "steward"

// HeaderEventID carries the envelope event ID on every published message.
const HeaderEventID = "Nats-Msg-Id"

// Handler receives the subject and raw body of a delivered message.
type Handler func(subject string, data []byte)

// Client publishes steward events and delivers inbound feedback over NATS.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("steward"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			logger.Error("nats async error", "subject", subject, "error", err)
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	if err := ctx.Err(); err != nil {
		nc.Close()
		return nil, err
	}
	return &Client{conn: nc, logger: logger}, nil
}

// Publish wraps data in an Envelope and sends it on subject. The event ID is
// also set as a message header.
func (c *Client) Publish(subject string, data any) error {
	env := newEnvelope(subject, data)
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Header.Set(HeaderEventID, env.EventID)
	msg.Data = payload
	if err := c.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	c.logger.Debug("event published", "subject", subject, "event_id", env.EventID)
	return nil
}

// QueueSubscribe delivers each message on subject to one member of queue.
func (c *Client) QueueSubscribe(subject, queue string, handler Handler) error {
	sub, err := c.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.logger.Info("subscribed", "subject", subject, "queue", queue)
	return nil
}

// Close stops deliveries and flushes pending publishes before closing.
func (c *Client) Close() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			c.logger.Warn("unsubscribe failed", "subject", sub.Subject, "error", err)
		}
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}

// DecodeSubmitted reads a FeedbackSubmitted from either a bare payload or an
// Envelope whose data is one.
func DecodeSubmitted(data []byte) (FeedbackSubmitted, error) {
	var head struct {
		EventID string          `json:"event_id"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return FeedbackSubmitted{}, fmt.Errorf("decode feedback event: %w", err)
	}
	body := data
	if head.EventID != "" && len(head.Data) > 0 {
		body = head.Data
	}

	var evt FeedbackSubmitted
	if err := json.Unmarshal(body, &evt); err != nil {
		return FeedbackSubmitted{}, fmt.Errorf("decode feedback event: %w", err)
	}
	return evt, nil
}
