package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestProducer_PublishEvent(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := &Producer{writer: w}

	err := p.PublishEvent(context.Background(), "product_events", "p-1", map[string]any{
		"type":      "product_created",
		"productID": "p-1",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "product_events", msg.Topic)
	assert.Equal(t, []byte("p-1"), msg.Key)
	assert.False(t, msg.Time.IsZero())

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "product_created", got["type"])
	assert.Equal(t, "p-1", got["productID"])
}

func TestProducer_PublishEvent_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unencodable event", func(t *testing.T) {
		t.Parallel()
		w := &fakeWriter{}
		p := &Producer{writer: w}

		err := p.PublishEvent(context.Background(), "t", "k", map[string]any{"ch": make(chan int)})
		require.Error(t, err)
		assert.Empty(t, w.msgs)
	})

	t.Run("writer failure", func(t *testing.T) {
		t.Parallel()
		broker := errors.New("broker unavailable")
		p := &Producer{writer: &fakeWriter{err: broker}}

		err := p.PublishEvent(context.Background(), "t", "k", map[string]any{"type": "x"})
		assert.ErrorIs(t, err, broker)
	})
}

func TestProducer_Close(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := &Producer{writer: w}
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	require.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}
