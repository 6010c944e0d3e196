package rabbitmq

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/models"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func sampleEvent() models.ProductEvent {
	return models.ProductEvent{
		ID:         "evt-1",
		Type:       models.EventProductLowStock,
		ProductID:  42,
		Name:       "Socks",
		Stock:      2,
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestEventRoundTrip(t *testing.T) {
	body, err := EncodeEvent(sampleEvent())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"productId":42`)

	decoded, err := DecodeEvent(body)
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), decoded)
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"productId":1}`))
	assert.Error(t, err)
}

func TestSettleAcksHandledEvent(t *testing.T) {
	body, err := EncodeEvent(sampleEvent())
	require.NoError(t, err)

	var got models.ProductEvent
	ack := &fakeAck{}
	settle(ack, body, func(e models.ProductEvent) error {
		got = e
		return nil
	})

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Equal(t, uint(42), got.ProductID)
}

func TestSettleNacksOnFailure(t *testing.T) {
	body, err := EncodeEvent(sampleEvent())
	require.NoError(t, err)

	ack := &fakeAck{}
	settle(ack, body, func(models.ProductEvent) error { return errors.New("boom") })
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)

	ack = &fakeAck{}
	called := false
	settle(ack, []byte("{"), func(models.ProductEvent) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, ack.nacked)
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{}
	assert.Error(t, c.PublishProductEvent(sampleEvent()))
	assert.Error(t, c.ConsumeProductEvents(func(models.ProductEvent) error { return nil }))
	assert.NoError(t, c.Close())
}
