package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

// PurchaseEvent is the payload published for downstream mailers.
type PurchaseEvent struct {
	TicketID       string                `json:"ticket_id"`
	TicketCode     string                `json:"ticket_code"`
	PurchaserEmail string                `json:"purchaser_email"`
	PurchaserName  string                `json:"purchaser_name"`
	Status         string                `json:"status"`
	Total          float64               `json:"total"`
	ItemCount      int                   `json:"item_count"`
	Lines          []domain.FulfilledLine `json:"lines"`
	CreatedAt      time.Time             `json:"created_at"`
}

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink publishes purchase events to the notification topic. A
// circuit breaker keeps a dead broker from tying up the fire-and-forget
// goroutines with full write timeouts on every checkout.
type KafkaSink struct {
	writer  kafkaMessageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewKafkaSink(brokers ...string) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "purchase-notifications",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaSink(w)
}

func newKafkaSink(w kafkaMessageWriter) *KafkaSink {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "purchase-notifications",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &KafkaSink{writer: w, breaker: breaker}
}

func (s *KafkaSink) NotifyPurchase(ctx context.Context, ticket *domain.Ticket, purchaserEmail, purchaserName string) error {
	event := PurchaseEvent{
		TicketID:       ticket.ID,
		TicketCode:     ticket.Code,
		PurchaserEmail: purchaserEmail,
		PurchaserName:  purchaserName,
		Status:         ticket.Status.String(),
		Total:          ticket.Total,
		ItemCount:      ticket.ItemCount,
		Lines:          ticket.FulfilledLines,
		CreatedAt:      ticket.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal purchase event: %w", err)
	}

	_, err = s.breaker.Execute(func() (struct{}, error) {
		writeErr := s.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(ticket.Code),
			Value: payload,
		})
		return struct{}{}, writeErr
	})
	if err != nil {
		return fmt.Errorf("publish purchase event: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	if closer, ok := s.writer.(*kafka.Writer); ok {
		return closer.Close()
	}
	return nil
}
