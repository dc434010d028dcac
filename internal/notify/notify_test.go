package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	subject string
	data    []byte
	opts    int
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.subject = subject
	f.data = data
	f.opts = len(opts)
	if f.err != nil {
		return nil, f.err
	}
	return &jetstream.PubAck{Stream: StreamName, Sequence: 1}, nil
}

func TestJetStreamNotifierPublishes(t *testing.T) {
	pub := &fakePublisher{}
	n := NewJetStreamNotifier(pub, nil)

	err := n.Notify(context.Background(), Event{
		Type:        EventCompleted,
		Stream:      "yield_distribution",
		Fingerprint: "yield:0x01",
		Amount:      "500",
		SourceBlock: 130,
		Attempts:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, "yield.recon.events.distribution.completed.yield_distribution", pub.subject)
	assert.Equal(t, 1, pub.opts)

	var decoded Event
	require.NoError(t, json.Unmarshal(pub.data, &decoded))
	assert.Equal(t, uint64(130), decoded.SourceBlock)
	assert.False(t, decoded.Timestamp.IsZero())
}

func TestJetStreamNotifierError(t *testing.T) {
	n := NewJetStreamNotifier(&fakePublisher{err: errors.New("no responders")}, nil)
	err := n.Notify(context.Background(), Event{Type: EventFailed})
	assert.Error(t, err)
}

func TestNopNotifier(t *testing.T) {
	assert.NoError(t, Nop{}.Notify(context.Background(), Event{}))
}
