package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/models"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/payment"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/payment/sslcommerz"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound         = errors.New("payment order not found")
	ErrOrderAlreadyPaid      = errors.New("payment order already paid")
	ErrOrderCancelled        = errors.New("payment order has been cancelled")
	ErrPaymentMethodDisabled = errors.New("payment method is disabled")
	ErrUnsupportedGateway    = errors.New("unsupported payment gateway")
	ErrInvalidSignature      = errors.New("invalid gateway signature")
)

// PaymentService drives fine payments through external gateways. The
// gateway webhook lands in HandleNotify, which settles the order, appends
// the DEBT_PAYMENT journal entry, and records the payment against the debt
// in one transaction.
type PaymentService struct {
	db           *gorm.DB
	debts        *DebtService
	notifier     Notifier
	txHashSecret string
}

func NewPaymentService(db *gorm.DB, debts *DebtService, notifier Notifier, txHashSecret string) *PaymentService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PaymentService{db: db, debts: debts, notifier: notifier, txHashSecret: txHashSecret}
}

// PaymentMethods lists the enabled gateway configurations.
func (s *PaymentService) PaymentMethods() ([]models.PaymentConfig, error) {
	var methods []models.PaymentConfig
	if err := s.db.Where("enable = ?", true).Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// CreateFineOrder opens a pending payment order against an active debt.
func (s *PaymentService) CreateFineOrder(userID, debtID uint, amount float64, paymentUUID string) (*models.FinePaymentOrder, error) {
	if amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}

	debt, err := s.debts.GetDebt(debtID)
	if err != nil {
		return nil, err
	}
	if !debt.IsActive() {
		return nil, ErrDebtNotActive
	}

	order := &models.FinePaymentOrder{
		ID:          strings.ReplaceAll(uuid.New().String(), "-", ""),
		UserID:      userID,
		DebtID:      debtID,
		Amount:      amount,
		Status:      models.OrderStatusPending,
		PaymentUUID: paymentUUID,
	}
	if err := s.db.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PaymentService) driverFor(config *models.PaymentConfig) (payment.Driver, error) {
	var driver payment.Driver
	switch config.PaymentMethod {
	case "sslcommerz":
		driver = sslcommerz.NewDriver()
	default:
		return nil, ErrUnsupportedGateway
	}

	var configMap map[string]interface{}
	if err := json.Unmarshal(config.Config, &configMap); err != nil {
		return nil, err
	}
	if err := driver.SetConfig(configMap); err != nil {
		return nil, err
	}
	return driver, nil
}

// PaymentJumpURL builds the gateway redirect URL for a pending order.
func (s *PaymentService) PaymentJumpURL(orderID, methodUUID, channel, notifyBaseURL, returnURL string) (string, error) {
	var config models.PaymentConfig
	if err := s.db.Where("uuid = ?", methodUUID).First(&config).Error; err != nil {
		return "", err
	}
	if !config.Enable {
		return "", ErrPaymentMethodDisabled
	}

	driver, err := s.driverFor(&config)
	if err != nil {
		return "", err
	}

	var order models.FinePaymentOrder
	if err := s.db.Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrOrderNotFound
		}
		return "", err
	}

	fullNotifyURL := fmt.Sprintf("%s/%s", strings.TrimRight(notifyBaseURL, "/"), config.UUID)

	params := map[string]interface{}{
		"channel": channel,
	}
	return driver.Pay(order.ID, order.Amount, fullNotifyURL, returnURL, params)
}

// HandleNotify processes a gateway callback: verifies the signature against
// the stored gateway config, then completes the order.
func (s *PaymentService) HandleNotify(paymentUUID string, params map[string]interface{}) error {
	var config models.PaymentConfig
	if err := s.db.Where("uuid = ?", paymentUUID).First(&config).Error; err != nil {
		return err
	}

	driver, err := s.driverFor(&config)
	if err != nil {
		return err
	}

	isValid, orderID, externalID, err := driver.Notify(params)
	if err != nil {
		return err
	}
	if !isValid {
		return ErrInvalidSignature
	}

	return s.CompleteFineOrder(orderID, externalID)
}

// CompleteFineOrder settles a pending order: marks it paid, appends the
// COMPLETED DEBT_PAYMENT journal entry, and records the payment against the
// debt. All in one transaction so the journal and the debt can never
// disagree about a payment.
func (s *PaymentService) CompleteFineOrder(orderID string, externalID string) error {
	var order models.FinePaymentOrder
	var debt *models.OutstandingDebt

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Set("gorm:query_option", "FOR UPDATE").First(&order, "id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if order.Status == models.OrderStatusPaid {
			return ErrOrderAlreadyPaid
		}
		if order.Status == models.OrderStatusCancelled {
			return ErrOrderCancelled
		}

		now := time.Now()
		order.Status = models.OrderStatusPaid
		order.ExternalID = externalID
		order.CompletedAt = &now
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		entry := models.Transaction{
			UserID:      order.UserID,
			Amount:      order.Amount,
			Kind:        models.KindDebtPayment,
			Source:      models.SourceFinePayment,
			Status:      models.TxCompleted,
			Description: fmt.Sprintf("Debt payment for debt #%d, order %s", order.DebtID, order.ID),
			ProcessedAt: &now,
			CreatedAt:   now,
		}
		entry.Hash = entry.GenerateHash(s.txHashSecret)
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		debt, err = s.debts.recordPayment(tx, order.DebtID, order.Amount, order.ID)
		if err != nil {
			return err
		}
		debt.RelatedTransactionID = &entry.ID
		return tx.Save(debt).Error
	})
	if err != nil {
		return err
	}

	s.notifier.Publish(context.Background(), Event{
		Type:   EventOrderCompleted,
		UserID: order.UserID,
		Payload: map[string]interface{}{
			"order_id":  order.ID,
			"debt_id":   order.DebtID,
			"amount":    order.Amount,
			"status":    string(debt.Status),
			"remaining": debt.Remaining(),
		},
	})
	return nil
}

// CancelFineOrder voids a pending order.
func (s *PaymentService) CancelFineOrder(orderID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.FinePaymentOrder
		err := tx.Set("gorm:query_option", "FOR UPDATE").First(&order, "id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusPaid {
			return ErrOrderAlreadyPaid
		}
		if order.Status == models.OrderStatusCancelled {
			return nil
		}
		order.Status = models.OrderStatusCancelled
		return tx.Save(&order).Error
	})
}
