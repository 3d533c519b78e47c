package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/smallbiznis/ledgerly/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishWritesKeyedMessage(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(fw, zap.NewNop())
	ctx := correlation.ContextWithCorrelationID(context.Background(), "corr-1")

	err := p.Publish(ctx, Event{Type: TypeVoucherCreated, VoucherID: "42", VoucherType: "payment", Revision: 1})
	require.NoError(t, err)

	require.Len(t, fw.msgs, 1)
	msg := fw.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, TypeVoucherCreated, header(msg, "event_type"))
	assert.Equal(t, "corr-1", header(msg, "correlation_id"))

	var evt Event
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "payment", evt.VoucherType)
}

func TestPublishSurfacesWriterError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaPublisherWithWriter(fw, zap.NewNop())

	err := p.Publish(context.Background(), Event{Type: TypeVoucherDeleted, VoucherID: "1"})

	assert.EqualError(t, err, "broker down")
}

func TestNoopAcceptsEverything(t *testing.T) {
	p := NewNoop()
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
