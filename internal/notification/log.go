package notification

import (
	"context"
	"log"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
)

// LogSink is used when no broker is configured: confirmations are
// written to the log instead of being delivered.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) NotifyPurchase(_ context.Context, ticket *domain.Ticket, purchaserEmail, _ string) error {
	log.Printf("purchase notification (simulated): ticket %s status %s total %.2f to %s",
		ticket.Code, ticket.Status, ticket.Total, purchaserEmail)
	return nil
}
