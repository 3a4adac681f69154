package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (r *recordingAck) Ack(bool) error {
	r.acked = true
	return nil
}

func (r *recordingAck) Nack(_ bool, requeue bool) error {
	r.nacked = true
	r.requeue = requeue
	return nil
}

func body(t *testing.T, e InquiryEvent) []byte {
	raw, err := json.Marshal(e)
	require.NoError(t, err)
	return raw
}

func TestSettleAcksHandledEvent(t *testing.T) {
	ack := &recordingAck{}
	var got InquiryEvent
	settle(ack, 1, body(t, InquiryEvent{Type: EventInquiryCreated, InquiryID: "inq-1"}), func(e InquiryEvent) error {
		got = e
		return nil
	})

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Equal(t, "inq-1", got.InquiryID)
}

func TestSettleRequeuesOnHandlerError(t *testing.T) {
	ack := &recordingAck{}
	settle(ack, 2, body(t, InquiryEvent{Type: EventInquiryReplied}), func(InquiryEvent) error {
		return errors.New("smtp down")
	})

	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
}

func TestSettleDropsMalformedBody(t *testing.T) {
	ack := &recordingAck{}
	called := false
	settle(ack, 3, []byte("{not json"), func(InquiryEvent) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestNotifyArtistAcceptsAllTypes(t *testing.T) {
	for _, typ := range []string{EventInquiryCreated, EventInquiryReplied, "other"} {
		assert.NoError(t, NotifyArtist(InquiryEvent{Type: typ}))
	}
}
