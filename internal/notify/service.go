package notify

import (
	"context"
	"fmt"

	"github.com/kleanhub/laundry-orders/pkg/logging"
)

// Service mirrors accepted pickup orders to the operator's inbox. It is
// strictly best-effort; callers log its errors and move on.
type Service struct {
	email         EmailSender
	operatorEmail string
	logger        *logging.Logger
}

// NewService creates the operator email copy service. It returns nil when
// no email sender or operator address is configured, which callers treat
// as "email copy disabled".
func NewService(email EmailSender, operatorEmail string, logger *logging.Logger) *Service {
	if email == nil || operatorEmail == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:         email,
		operatorEmail: operatorEmail,
		logger:        logger,
	}
}

// NotifyNewOrder emails the formatted order summary to the operator.
func (s *Service) NotifyNewOrder(ctx context.Context, orderID, summary string) error {
	if s == nil {
		return nil
	}
	msg := EmailMessage{
		To:      s.operatorEmail,
		Subject: fmt.Sprintf("New pickup order %s", orderID),
		Body:    summary,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: order %s email copy: %w", orderID, err)
	}
	s.logger.Info("order email copy sent", "order_id", orderID, "to", s.operatorEmail)
	return nil
}
