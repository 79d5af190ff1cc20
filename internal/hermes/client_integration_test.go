//go:build integration

package hermes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func connect(t *testing.T) *Client {
	t.Helper()
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	client, err := NewClient(context.Background(), natsURL, os.Getenv("NATS_TOKEN"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestIntegration_PublishEnvelope(t *testing.T) {
	client := connect(t)

	received := make(chan *nats.Msg, 1)
	sub, err := client.conn.Subscribe("steward.test.summary", func(msg *nats.Msg) { received <- msg })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()
	client.conn.Flush()

	summary := SummaryGenerated{StartDate: "2024-01-01", EndDate: "2024-01-31", Summary: "quiet month"}
	if err := client.Publish("steward.test.summary", summary); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-received:
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		if env.EventID == "" || msg.Header.Get(HeaderEventID) != env.EventID {
			t.Errorf("event id header %q does not match envelope %q", msg.Header.Get(HeaderEventID), env.EventID)
		}
		data, _ := env.Data.(map[string]any)
		if data["summary"] != "quiet month" {
			t.Errorf("expected summary payload, got %v", env.Data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestIntegration_QueueSubscribeDeliversOnce(t *testing.T) {
	a := connect(t)
	b := connect(t)

	var delivered atomic.Int32
	handler := func(subject string, data []byte) {
		if evt, err := DecodeSubmitted(data); err == nil && evt.Feedback == "cold soup" {
			delivered.Add(1)
		}
	}
	if err := a.QueueSubscribe("steward.test.submitted", QueueGroup, handler); err != nil {
		t.Fatal(err)
	}
	if err := b.QueueSubscribe("steward.test.submitted", QueueGroup, handler); err != nil {
		t.Fatal(err)
	}
	a.conn.Flush()
	b.conn.Flush()

	if err := a.Publish("steward.test.submitted", FeedbackSubmitted{Feedback: "cold soup", Source: "test"}); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	if n := delivered.Load(); n != 1 {
		t.Errorf("expected exactly one delivery across the queue group, got %d", n)
	}
}
