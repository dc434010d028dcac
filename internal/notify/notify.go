// Package notify publishes distribution outcomes to downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const (
	EventCompleted = "distribution.completed"
	EventFailed    = "distribution.failed"
	EventAlert     = "distribution.alert"

	StreamName    = "YIELD_RECON_EVENTS"
	SubjectPrefix = "yield.recon.events"
)

// Event is the outbound message for one finalized distribution attempt.
type Event struct {
	Type        string    `json:"event_type"`
	Stream      string    `json:"stream"`
	Fingerprint string    `json:"fingerprint"`
	LoanID      string    `json:"loan_id"`
	PoolID      string    `json:"pool_id"`
	Amount      string    `json:"amount"`
	SourceBlock uint64    `json:"source_block"`
	SourceTx    string    `json:"source_tx"`
	Attempts    int       `json:"attempts"`
	ActionRef   string    `json:"action_ref,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Notifier delivers events. Delivery failures never affect reconciliation.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Publisher is the subset of jetstream.JetStream used for publishing.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// JetStreamNotifier publishes events to yield.recon.events.{type}.{stream}.
type JetStreamNotifier struct {
	js     Publisher
	logger *zap.Logger
}

func NewJetStreamNotifier(js Publisher, logger *zap.Logger) *JetStreamNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JetStreamNotifier{js: js, logger: logger}
}

// Notify publishes evt with a message id so JetStream drops redelivered duplicates.
func (n *JetStreamNotifier) Notify(ctx context.Context, evt Event) error {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msgID := evt.Type + ":" + evt.Fingerprint + ":" + strconv.Itoa(evt.Attempts)
	if _, err := n.js.Publish(ctx, Subject(evt), data, jetstream.WithMsgID(msgID)); err != nil {
		n.logger.Warn("outbound publish failed", zap.String("subject", Subject(evt)), zap.Error(err))
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// Subject builds the subject for an event.
func Subject(evt Event) string {
	subject := SubjectPrefix + "." + evt.Type
	if evt.Stream != "" {
		subject += "." + evt.Stream
	}
	return subject
}

// EnsureStream creates the outbound events stream.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create outbound stream: %w", err)
	}
	return nil
}

// Connect establishes a NATS connection and returns a JetStream context.
func Connect(url string, logger *zap.Logger) (*nats.Conn, jetstream.JetStream, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nc, err := nats.Connect(url,
		nats.Name("reconciler"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return nc, js, nil
}
