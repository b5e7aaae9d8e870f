package services

import (
	"context"
	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"coursemaster/payment"
	"coursemaster/utils"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// amountTolerance absorbs gateway rounding (Midtrans only accepts whole amounts)
const amountTolerance = 1.0

// PaymentService runs the checkout flow against the configured provider
type PaymentService struct {
	db          *gorm.DB
	log         *logger.Logger
	provider    payment.Provider
	enrollments *EnrollmentService
	notifier    utils.Notifier
	currency    string
	now         func() time.Time
}

func NewPaymentService(db *gorm.DB, log *logger.Logger, provider payment.Provider, enrollments *EnrollmentService, notifier utils.Notifier, currency string) *PaymentService {
	return &PaymentService{
		db:          db,
		log:         log.With("provider", provider.Name()),
		provider:    provider,
		enrollments: enrollments,
		notifier:    notifier,
		currency:    currency,
		now:         time.Now,
	}
}

// CheckoutSession is returned to the client to redirect into the gateway
type CheckoutSession struct {
	GatewayURL    string `json:"gateway_url"`
	OrderID       uint   `json:"order_id"`
	TransactionID string `json:"transaction_id"`
}

// PaymentOutcome is the state of an order after a confirmation
type PaymentOutcome struct {
	Status     payment.Status     `json:"status"`
	Order      *models.Order      `json:"order"`
	Enrollment *models.Enrollment `json:"enrollment,omitempty"`
}

// CreateSession opens a pending order and a gateway checkout for it.
// The order is removed again when the gateway refuses the session.
func (s *PaymentService) CreateSession(ctx context.Context, user *models.User, courseID uint) (*CheckoutSession, error) {
	db := s.db.WithContext(ctx)
	course, err := findCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if course.Price <= 0 {
		return nil, apperr.BadRequest("This course is free, enroll directly")
	}
	if err := ensureNotEnrolled(db, user.ID, courseID); err != nil {
		return nil, err
	}

	var pending int64
	if err := db.Model(&models.Order{}).
		Where("user_id = ? AND course_id = ? AND status = ?", user.ID, courseID, models.OrderPending).
		Count(&pending).Error; err != nil {
		return nil, apperr.Wrap(err, "check pending orders")
	}
	if pending > 0 {
		return nil, apperr.Conflict("Payment already in progress")
	}

	currency := course.Currency
	if currency == "" {
		currency = s.currency
	}
	order := &models.Order{
		UserID:        user.ID,
		CourseID:      courseID,
		Amount:        course.Price,
		Currency:      currency,
		PaymentMethod: s.provider.Name(),
		TransactionID: newTransactionID(s.now()),
		Status:        models.OrderPending,
	}
	if err := db.Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Payment already in progress")
		}
		return nil, apperr.Wrap(err, "create order")
	}

	session, err := s.provider.CreateSession(ctx, payment.SessionRequest{
		TransactionID: order.TransactionID,
		OrderID:       order.ID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		CourseID:      course.ID,
		CourseTitle:   course.Title,
		Category:      course.Category,
		CustomerID:    user.ID,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
	})
	if err != nil {
		if derr := db.Unscoped().Delete(order).Error; derr != nil {
			s.log.Error("failed to remove order after gateway error", "order_id", order.ID, "error", derr)
		}
		s.log.Warn("payment session rejected", "order_id", order.ID, "error", err)
		return nil, apperr.Upstream("Failed to create payment session", err)
	}

	if err := db.Model(order).Updates(map[string]interface{}{
		"gateway_reference": session.Reference,
		"gateway_url":       session.GatewayURL,
	}).Error; err != nil {
		return nil, apperr.Wrap(err, "save gateway session")
	}

	s.log.Info("payment session created", "order_id", order.ID, "transaction_id", order.TransactionID, "course_id", courseID)
	return &CheckoutSession{GatewayURL: session.GatewayURL, OrderID: order.ID, TransactionID: order.TransactionID}, nil
}

// Validate confirms an order after the customer returns from the gateway
func (s *PaymentService) Validate(ctx context.Context, userID uint, transactionID string, params map[string]string) (*PaymentOutcome, error) {
	order, err := s.findOrder(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperr.Forbidden("This order belongs to another user")
	}
	if order.Status != models.OrderPending && order.Status != models.OrderFailed {
		return nil, apperr.Conflict("Order already processed")
	}

	result, err := s.provider.Validate(ctx, transactionID, params)
	if err != nil {
		return nil, apperr.Upstream("Could not validate payment", err)
	}
	return s.apply(ctx, order, result)
}

// HandleWebhook records a gateway push and applies it to the order.
// Deliveries for already-settled orders are acknowledged without side effects.
func (s *PaymentService) HandleWebhook(ctx context.Context, hook payment.Webhook) (*PaymentOutcome, error) {
	event := &models.PaymentEvent{
		Provider:       s.provider.Name(),
		SignatureValid: true,
		Payload:        payment.PayloadJSON(hook),
	}

	result, err := s.provider.ParseWebhook(ctx, hook)
	if err != nil {
		event.SignatureValid = !errors.Is(err, payment.ErrInvalidSignature)
		event.Error = err.Error()
		s.saveEvent(ctx, event)
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			s.log.Warn("webhook signature rejected")
			return nil, apperr.Unauthorized("Invalid payment notification signature")
		case errors.Is(err, payment.ErrMalformedWebhook):
			return nil, apperr.BadRequest("Malformed payment notification")
		default:
			return nil, apperr.Upstream("Could not verify payment notification", err)
		}
	}

	event.TransactionID = result.TransactionID
	event.Status = string(result.Status)
	s.saveEvent(ctx, event)
	s.log.Info("webhook received", "transaction_id", result.TransactionID, "status", result.Status)

	order, err := s.findOrder(ctx, result.TransactionID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.markEvent(ctx, event, false, "order not found")
			return &PaymentOutcome{Status: result.Status}, nil
		}
		return nil, err
	}

	outcome, err := s.apply(ctx, order, result)
	if err != nil {
		s.markEvent(ctx, event, false, err.Error())
		return nil, err
	}
	s.markEvent(ctx, event, true, "")
	return outcome, nil
}

// apply moves the order according to the gateway result. Every transition is
// conditional on the current status so repeated deliveries change nothing.
func (s *PaymentService) apply(ctx context.Context, order *models.Order, result *payment.Result) (*PaymentOutcome, error) {
	status := result.Status
	if status == payment.StatusCompleted && result.Amount > 0 && result.Amount+amountTolerance < order.Amount {
		s.log.Warn("paid amount below order amount", "order_id", order.ID, "paid", result.Amount, "expected", order.Amount)
		status = payment.StatusFailed
	}

	outcome := &PaymentOutcome{Status: status, Order: order}
	switch status {
	case payment.StatusCompleted:
		enrollment, err := s.completeOrder(ctx, order, result.Reference)
		if err != nil {
			return nil, err
		}
		outcome.Enrollment = enrollment
	case payment.StatusFailed:
		if err := s.transition(ctx, order, models.OrderPending, models.OrderFailed); err != nil {
			return nil, err
		}
	case payment.StatusRefunded:
		if err := s.transition(ctx, order, models.OrderCompleted, models.OrderRefunded); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).First(order, order.ID).Error; err != nil {
		return nil, apperr.Wrap(err, "reload order")
	}
	return outcome, nil
}

// completeOrder flips a pending or failed order to completed and makes sure the
// enrollment exists. Failed orders are revived since the gateway has captured the money.
// It returns nil when the order was already settled by an earlier delivery.
func (s *PaymentService) completeOrder(ctx context.Context, order *models.Order, reference string) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	var created bool
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": models.OrderCompleted, "completed_at": now}
		if reference != "" {
			updates["gateway_reference"] = reference
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", order.ID, []string{models.OrderPending, models.OrderFailed}).
			Updates(updates)
		if res.Error != nil {
			return apperr.Wrap(res.Error, "complete order")
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var err error
		enrollment, created, err = s.enrollments.ensureEnrollment(tx, order.UserID, order.CourseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		s.log.Info("order already processed", "order_id", order.ID)
		return nil, nil
	}

	if order.Status == models.OrderFailed {
		s.log.Warn("payment confirmed after order failed", "order_id", order.ID, "transaction_id", order.TransactionID)
	}
	s.log.Info("order completed", "order_id", order.ID, "enrollment_id", enrollment.ID, "new_enrollment", created)
	s.sendReceipt(ctx, order, created)
	return enrollment, nil
}

func (s *PaymentService) transition(ctx context.Context, order *models.Order, from, to string) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Update("status", to)
	if res.Error != nil {
		return apperr.Wrap(res.Error, "update order status")
	}
	if res.RowsAffected > 0 {
		s.log.Info("order status changed", "order_id", order.ID, "from", from, "to", to)
	}
	return nil
}

// ListOrders returns a page of the user's orders, newest first
func (s *PaymentService) ListOrders(ctx context.Context, userID uint, p utils.Pagination) ([]models.Order, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "count orders")
	}
	orders := []models.Order{}
	if err := db.Preload("Course").Order("created_at DESC, id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&orders).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "list orders")
	}
	return orders, total, nil
}

// ExpireStaleOrders fails pending orders created before the cutoff
func (s *PaymentService) ExpireStaleOrders(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan)
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND created_at < ?", models.OrderPending, cutoff).
		Update("status", models.OrderFailed)
	if res.Error != nil {
		return 0, apperr.Wrap(res.Error, "expire pending orders")
	}
	return res.RowsAffected, nil
}

func (s *PaymentService) findOrder(ctx context.Context, transactionID string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, apperr.Wrap(err, "load order")
	}
	return &order, nil
}

func (s *PaymentService) sendReceipt(ctx context.Context, order *models.Order, enrolled bool) {
	var user models.User
	var course models.Course
	db := s.db.WithContext(ctx)
	if err := db.First(&user, order.UserID).Error; err != nil {
		s.log.Warn("receipt email skipped", "order_id", order.ID, "error", err)
		return
	}
	if err := db.First(&course, order.CourseID).Error; err != nil {
		s.log.Warn("receipt email skipped", "order_id", order.ID, "error", err)
		return
	}
	s.notifier.SendPaymentReceiptEmail(user.Email, user.Name, course.Title, order.Amount, order.Currency, order.TransactionID)
	if enrolled {
		s.notifier.SendEnrollmentEmail(user.Email, user.Name, course.Title)
	}
}

func (s *PaymentService) saveEvent(ctx context.Context, event *models.PaymentEvent) {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		s.log.Error("failed to record payment event", "error", err)
	}
}

func (s *PaymentService) markEvent(ctx context.Context, event *models.PaymentEvent, processed bool, reason string) {
	if event.ID == 0 {
		return
	}
	if err := s.db.WithContext(ctx).Model(event).Updates(map[string]interface{}{
		"processed": processed,
		"error":     reason,
	}).Error; err != nil {
		s.log.Error("failed to update payment event", "event_id", event.ID, "error", err)
	}
}

func newTransactionID(now time.Time) string {
	return fmt.Sprintf("COURSE_%d_%s", now.Unix(), strings.ToUpper(uuid.NewString()[:8]))
}
