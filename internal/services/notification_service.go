package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"business_manager/internal/models"

	"go.uber.org/zap"
)

// Notifier delivers a text message to a phone number.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// NotificationService sends customer messages for order events. Every
// method returns immediately; delivery failures are only logged.
type NotificationService interface {
	OrderReceived(order *models.Order)
	OrderCompleted(order *models.Order)
	OrderDelivered(order *models.Order)
	// Wait blocks until messages already dispatched have finished.
	Wait()
}

type notificationService struct {
	notifier Notifier
	logger   *zap.Logger
	timeout  time.Duration
	pending  sync.WaitGroup
}

func NewNotificationService(notifier Notifier, logger *zap.Logger) NotificationService {
	return &notificationService{notifier: notifier, logger: logger, timeout: 30 * time.Second}
}

func (s *notificationService) OrderReceived(order *models.Order) {
	s.dispatch(order, fmt.Sprintf("Hello %s! Your order %s has been received and is now pending.",
		order.Customer.Name, order.Code))
}

func (s *notificationService) OrderCompleted(order *models.Order) {
	s.dispatch(order, fmt.Sprintf("Hi %s, your order %s is now complete! Thank you for choosing our laundry service.",
		order.Customer.Name, order.Code))
}

func (s *notificationService) OrderDelivered(order *models.Order) {
	s.dispatch(order, fmt.Sprintf("Hello %s, your order %s has been delivered successfully. We appreciate your trust in our services!",
		order.Customer.Name, order.Code))
}

func (s *notificationService) Wait() {
	s.pending.Wait()
}

func (s *notificationService) dispatch(order *models.Order, message string) {
	phone, code := order.Customer.Phone, order.Code
	if !strings.HasPrefix(phone, "+") {
		s.logger.Warn("skipping notification, phone is not in international format",
			zap.String("order_code", code), zap.String("phone", phone))
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.notifier.Send(ctx, phone, message); err != nil {
			s.logger.Warn("failed to send notification",
				zap.String("order_code", code), zap.Error(err))
			return
		}
		s.logger.Info("notification sent", zap.String("order_code", code))
	}()
}

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Send(_ context.Context, phone, message string) error {
	n.Logger.Info("sms", zap.String("phone", phone), zap.String("message", message))
	return nil
}
