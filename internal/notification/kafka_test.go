package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	m        sync.Mutex
	messages []kafka.Message
	err      error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.m.Lock()
	defer f.m.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) written() []kafka.Message {
	f.m.Lock()
	defer f.m.Unlock()
	return f.messages
}

func sampleTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:          "ticket-1",
		Code:        "TICKET-1700000000000-ABCDEFGHIJ",
		PurchaserID: "user-1",
		FulfilledLines: []domain.FulfilledLine{
			{ProductID: "prod-keyboard", Name: "Mechanical Keyboard", UnitPrice: 89.90, Quantity: 1},
		},
		Total:     89.90,
		ItemCount: 1,
		Status:    domain.TicketStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
}

func TestKafkaSink_PublishesEvent(t *testing.T) {
	writer := &fakeWriter{}
	sink := newKafkaSink(writer)

	ticket := sampleTicket()
	err := sink.NotifyPurchase(context.Background(), ticket, "buyer@example.com", "Bruno Buyer")
	require.NoError(t, err)

	msgs := writer.written()
	require.Len(t, msgs, 1)
	assert.Equal(t, ticket.Code, string(msgs[0].Key))

	var event PurchaseEvent
	require.NoError(t, json.Unmarshal(msgs[0].Value, &event))
	assert.Equal(t, ticket.ID, event.TicketID)
	assert.Equal(t, "buyer@example.com", event.PurchaserEmail)
	assert.Equal(t, "Bruno Buyer", event.PurchaserName)
	assert.Equal(t, "COMPLETED", event.Status)
	assert.Equal(t, 89.90, event.Total)
	require.Len(t, event.Lines, 1)
	assert.Equal(t, "prod-keyboard", event.Lines[0].ProductID)
}

func TestKafkaSink_WriteErrorSurfaces(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker unreachable")}
	sink := newKafkaSink(writer)

	err := sink.NotifyPurchase(context.Background(), sampleTicket(), "buyer@example.com", "Bruno Buyer")
	require.ErrorContains(t, err, "broker unreachable")
}

func TestKafkaSink_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker unreachable")}
	sink := newKafkaSink(writer)
	ticket := sampleTicket()

	for i := 0; i < 5; i++ {
		err := sink.NotifyPurchase(context.Background(), ticket, "buyer@example.com", "Bruno Buyer")
		require.Error(t, err)
	}

	// The broker is never touched once the breaker is open.
	writer.m.Lock()
	writer.err = nil
	writer.m.Unlock()

	err := sink.NotifyPurchase(context.Background(), ticket, "buyer@example.com", "Bruno Buyer")
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Empty(t, writer.written())
}

func TestLogSink_NeverFails(t *testing.T) {
	sink := NewLogSink()

	err := sink.NotifyPurchase(context.Background(), sampleTicket(), "buyer@example.com", "Bruno Buyer")
	assert.NoError(t, err)
}
